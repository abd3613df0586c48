package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"gamestore-ingest/internal/domain"
	"gamestore-ingest/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// The storefront serves protocol-relative partial image URLs; the full
	// asset address is prefix + ref + size/crop suffix.
	imageURLPrefix = "https:"
	imageURLSuffix = "_bg_crop_1680x655.jpg"

	// CoverField is the default image field on a game record.
	CoverField = "cover"
	// GalleryField holds the additional screenshots on a game record.
	GalleryField = "gallery"
)

// AssetUploader downloads storefront images and attaches them as file
// fields on store records.
type AssetUploader interface {
	UploadImage(ctx context.Context, imageRef string, game *domain.Game, field string) error
}

type assetUploader struct {
	uploads repository.UploadRepository
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewAssetUploader creates an AssetUploader paced by limiter. A nil
// limiter disables pacing.
func NewAssetUploader(uploads repository.UploadRepository, limiter *rate.Limiter, logger *zap.Logger) AssetUploader {
	return &assetUploader{
		uploads: uploads,
		http:    &http.Client{Timeout: 60 * time.Second},
		limiter: limiter,
		logger:  logger,
	}
}

// UploadImage downloads the image behind imageRef and attaches it to the
// given field of game, named after the game's slug. The error return is
// informational; the pipeline never fails a game over a lost image.
func (u *assetUploader) UploadImage(ctx context.Context, imageRef string, game *domain.Game, field string) error {
	if field == "" {
		field = CoverField
	}

	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("image pacing interrupted: %w", err)
		}
	}

	data, err := u.download(ctx, imageURLPrefix+imageRef+imageURLSuffix)
	if err != nil {
		u.logger.Error("image download failed",
			zap.String("game", game.Name),
			zap.String("field", field),
			zap.Error(err),
		)
		return err
	}

	u.logger.Info("uploading image",
		zap.String("game", game.Name),
		zap.String("field", field),
	)

	filename := game.Slug + ".jpg"
	if err := u.uploads.Upload(ctx, game.ID, "game", field, filename, data); err != nil {
		u.logger.Error("image upload failed",
			zap.String("game", game.Name),
			zap.String("field", field),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (u *assetUploader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	res, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image source returned status %d", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return data, nil
}
