package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_SubmitsMultipartAssociationForm(t *testing.T) {
	type received struct {
		path     string
		refID    string
		ref      string
		field    string
		filename string
		content  []byte
	}
	var got received

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		got.path = r.URL.Path
		got.refID = r.FormValue("refId")
		got.ref = r.FormValue("ref")
		got.field = r.FormValue("field")

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()

		got.filename = header.Filename
		got.content, _ = io.ReadAll(file)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewUploadRepository(NewClient(srv.URL))

	data := []byte{0xff, 0xd8, 0xff, 0xe0}
	err := repo.Upload(context.Background(), 42, "game", "cover", "baldurs-gate.jpg", data)
	require.NoError(t, err)

	assert.Equal(t, "/upload", got.path)
	assert.Equal(t, "42", got.refID)
	assert.Equal(t, "game", got.ref)
	assert.Equal(t, "cover", got.field)
	assert.Equal(t, "baldurs-gate.jpg", got.filename)
	assert.Equal(t, data, got.content)
}

func TestUpload_RejectionSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"message": "file too large"}`))
	}))
	defer srv.Close()

	repo := NewUploadRepository(NewClient(srv.URL))

	err := repo.Upload(context.Background(), 1, "game", "gallery", "big.jpg", make([]byte, 16))
	assert.Error(t, err)
}
