package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage writes proof files to a directory on disk and returns URLs
// under the configured base URL. Intended for development; the files are
// served back by the HTTP layer.
type LocalStorage struct {
	baseURL   string
	uploadDir string
}

func NewLocalStorage(baseURL, uploadDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		baseURL:   strings.TrimRight(baseURL, "/"),
		uploadDir: uploadDir,
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no data to upload")
	}
	key := uuid.NewString() + extensionFromContentType(contentType)
	if err := os.WriteFile(filepath.Join(s.uploadDir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write proof file: %w", err)
	}
	return s.baseURL + "/api/v1/proofs/" + key, nil
}

// Open returns the stored file for serving over HTTP.
func (s *LocalStorage) Open(key string) (*os.File, error) {
	// filepath.Base guards against traversal in the key
	return os.Open(filepath.Join(s.uploadDir, filepath.Base(key)))
}
