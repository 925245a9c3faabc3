// Package storage persists pipeline output to a local directory or to
// Aliyun OSS and returns its public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Provider stores encoded images.
type Provider interface {
	Upload(ctx context.Context, input UploadInput) (UploadOutput, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Name() string
}

// UploadInput describes one object to store.
type UploadInput struct {
	Data        io.Reader
	Folder      string
	Filename    string
	ContentType string
}

// UploadOutput is where an object ended up.
type UploadOutput struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Config selects and configures a Provider.
type Config struct {
	Type  string      `mapstructure:"type" json:"type" yaml:"type" default:"local" validate:"oneof=local oss"`
	Local LocalConfig `mapstructure:"local" json:"local" yaml:"local"`
	OSS   OSSConfig   `mapstructure:"oss" json:"oss" yaml:"oss"`
}

// LocalConfig configures LocalProvider.
type LocalConfig struct {
	BasePath string `mapstructure:"base_path" json:"base_path" yaml:"base_path" default:"uploads"`
	BaseURL  string `mapstructure:"base_url" json:"base_url" yaml:"base_url" default:"/uploads"`
}

// OSSConfig configures OSSProvider.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id" yaml:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret" json:"-" yaml:"access_key_secret"`
	Bucket          string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
	Domain          string `mapstructure:"domain" json:"domain" yaml:"domain"`
}

// New builds the provider named by cfg.Type.
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalProvider(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "oss":
		return NewOSSProvider(cfg.OSS)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// ObjectKey joins folder and filename into a slash-separated key. An empty
// filename gets a random UUID with ext appended.
func ObjectKey(folder, filename, ext string) string {
	if filename == "" {
		filename = uuid.NewString()
		if ext != "" {
			filename += "." + strings.TrimPrefix(ext, ".")
		}
	}
	return strings.TrimPrefix(path.Join("/", folder, filename), "/")
}

// Extension returns the file extension for a pipeline format tag.
func Extension(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	default:
		return format
	}
}
