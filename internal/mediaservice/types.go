package mediaservice

import (
	"context"
	"errors"
	"io"
)

// MaxUploadSize is the largest accepted cover image, in bytes.
const MaxUploadSize = 5 << 20

// CoverFolder is where blog cover images are stored.
const CoverFolder = "blog-covers"

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaTooLarge    = errors.New("media exceeds the maximum upload size")
	ErrEmptyMedia       = errors.New("media is empty")
	ErrInvalidAssetID   = errors.New("invalid asset id")
)

// allowedTypes are the image types accepted for upload.
var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Asset struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
}

type Store interface {
	Upload(ctx context.Context, r io.Reader, folder string) (*Asset, error)
	Delete(ctx context.Context, assetID string) error
}

type Logger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}
