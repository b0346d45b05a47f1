package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"fieldtrack/internal/config"
)

type localStorage struct {
	baseDir string
	baseURL string
}

func newLocalStorage(cfg *config.Config) (Storage, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStorage{
		baseDir: cfg.UploadDir,
		baseURL: cfg.BaseURL + "/uploads",
	}, nil
}

func (s *localStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadedFile, error) {
	key := objectKey(folder, file.Filename)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dest := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &UploadedFile{
		Key:          key,
		URL:          s.baseURL + "/" + key,
		OriginalName: file.Filename,
		MimeType:     detectMimeType(file),
		Size:         file.Size,
	}, nil
}

func (s *localStorage) UploadMultiple(ctx context.Context, files []*multipart.FileHeader, folder string) ([]UploadedFile, error) {
	uploaded := make([]UploadedFile, 0, len(files))
	for _, file := range files {
		f, err := s.Upload(ctx, file, folder)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, *f)
	}
	return uploaded, nil
}

func (s *localStorage) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *localStorage) ResolveURL(ctx context.Context, key string) (string, error) {
	return s.baseURL + "/" + key, nil
}
