package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider stores objects below a directory.
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider stores below basePath, which is created on the first
// upload. URLs are baseURL + "/" + key.
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	if basePath == "" {
		return nil, fmt.Errorf("local storage needs a base path")
	}
	return &LocalProvider{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload writes the object to disk.
func (p *LocalProvider) Upload(ctx context.Context, input UploadInput) (UploadOutput, error) {
	key := ObjectKey(input.Folder, input.Filename, "")
	fullPath, err := p.resolve(key)
	if err != nil {
		return UploadOutput{}, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return UploadOutput{}, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return UploadOutput{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, input.Data); err != nil {
		return UploadOutput{}, fmt.Errorf("failed to write file content: %w", err)
	}

	return UploadOutput{Key: key, URL: p.baseURL + "/" + key}, nil
}

// Delete removes the object. Missing objects are not an error.
func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	fullPath, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether the object is on disk.
func (p *LocalProvider) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := p.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (p *LocalProvider) Name() string { return "local" }

// resolve maps key below basePath and rejects keys that escape it.
func (p *LocalProvider) resolve(key string) (string, error) {
	fullPath := filepath.Join(p.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(p.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return fullPath, nil
}
