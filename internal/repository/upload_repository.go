package repository

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
)

// UploadRepository attaches binary files to store records through the
// store's generic multipart upload endpoint.
type UploadRepository interface {
	Upload(ctx context.Context, refID int, ref, field, filename string, data []byte) error
}

type uploadRepository struct {
	client *Client
}

// NewUploadRepository creates a new instance of UploadRepository
func NewUploadRepository(client *Client) UploadRepository {
	return &uploadRepository{client: client}
}

// Upload submits data as a multipart form with the store's expected
// association fields: refId, ref, field and files.
func (r *uploadRepository) Upload(ctx context.Context, refID int, ref, field, filename string, data []byte) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("refId", strconv.Itoa(refID)); err != nil {
		return fmt.Errorf("failed to write refId field: %w", err)
	}
	if err := form.WriteField("ref", ref); err != nil {
		return fmt.Errorf("failed to write ref field: %w", err)
	}
	if err := form.WriteField("field", field); err != nil {
		return fmt.Errorf("failed to write field name: %w", err)
	}

	part, err := form.CreateFormFile("files", filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	if err := r.client.postForm(ctx, "/upload", form.FormDataContentType(), &body); err != nil {
		return fmt.Errorf("failed to upload %s for ref %d: %w", field, refID, err)
	}
	return nil
}
