package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage is returned by SaveImage when the upload is not an image.
var ErrNotImage = errors.New("uploaded file is not an image")

// Storage keeps uploaded files and hands back their public URL.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	// Delete removes the object behind a URL returned by Save.
	// URLs the driver does not own are ignored.
	Delete(ctx context.Context, url string) error
}

// New builds the driver selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.UploadDir, cfg.BaseURL)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// SaveImage sniffs an uploaded file, rejects anything that is not an image,
// and stores it under a fresh uuid name keeping the extension.
func SaveImage(ctx context.Context, st Storage, fh *multipart.FileHeader) (string, error) {
	return save(ctx, st, fh, true)
}

// SaveFile stores any uploaded file under a fresh uuid name.
func SaveFile(ctx context.Context, st Storage, fh *multipart.FileHeader) (string, error) {
	return save(ctx, st, fh, false)
}

func save(ctx context.Context, st Storage, fh *multipart.FileHeader, imagesOnly bool) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if imagesOnly && !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	// Generate a safe unique filename (uuid + extension)
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = mt.Extension()
	}
	return st.Save(ctx, uuid.NewString()+ext, file, mt.String())
}
