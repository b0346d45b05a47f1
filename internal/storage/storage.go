package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fieldtrack/internal/config"
)

// UploadedFile describes a stored file.
type UploadedFile struct {
	Key          string
	URL          string
	OriginalName string
	MimeType     string
	Size         int64
}

// Storage is the attachment storage façade. The backend (S3 or local disk) is
// selected once from configuration; callers never know which one they talk to.
type Storage interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadedFile, error)
	UploadMultiple(ctx context.Context, files []*multipart.FileHeader, folder string) ([]UploadedFile, error)
	Delete(ctx context.Context, key string) error
	// ResolveURL returns a fresh URL for the key: a signed, expiring URL on
	// S3, a static path on local disk.
	ResolveURL(ctx context.Context, key string) (string, error)
}

// New selects the backend from configuration presence.
func New(cfg *config.Config, log zerolog.Logger) (Storage, error) {
	if cfg.S3Configured() {
		log.Info().Str("bucket", cfg.S3Bucket).Msg("storage: using S3 backend")
		return newS3Storage(cfg)
	}
	log.Info().Str("dir", cfg.UploadDir).Msg("storage: using local disk backend")
	return newLocalStorage(cfg)
}

// objectKey builds a collision-free key preserving the original extension.
func objectKey(folder, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), ext)
}

func detectMimeType(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
