package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSProvider stores objects in an Aliyun OSS bucket.
type OSSProvider struct {
	bucket *oss.Bucket
	domain string
}

// NewOSSProvider connects to the bucket. Without a custom domain, URLs use
// the bucket's default endpoint host.
func NewOSSProvider(cfg OSSConfig) (*OSSProvider, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("oss endpoint and bucket are required")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", cfg.Bucket, err)
	}

	return &OSSProvider{
		bucket: bucket,
		domain: ossDomain(cfg),
	}, nil
}

func ossDomain(cfg OSSConfig) string {
	if cfg.Domain == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
		return fmt.Sprintf("https://%s.%s", cfg.Bucket, host)
	}
	domain := strings.TrimSuffix(cfg.Domain, "/")
	if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	return domain
}

// Upload puts the object into the bucket.
func (p *OSSProvider) Upload(ctx context.Context, input UploadInput) (UploadOutput, error) {
	key := ObjectKey(input.Folder, input.Filename, "")

	var opts []oss.Option
	if input.ContentType != "" {
		opts = append(opts, oss.ContentType(input.ContentType))
	}
	if err := p.bucket.PutObject(key, input.Data, opts...); err != nil {
		return UploadOutput{}, fmt.Errorf("failed to upload to OSS: %w", err)
	}

	return UploadOutput{Key: key, URL: p.domain + "/" + key}, nil
}

// Delete removes the object from the bucket.
func (p *OSSProvider) Delete(ctx context.Context, key string) error {
	if err := p.bucket.DeleteObject(strings.TrimPrefix(key, "/")); err != nil {
		return fmt.Errorf("failed to delete from OSS: %w", err)
	}
	return nil
}

// Exists reports whether the object is in the bucket.
func (p *OSSProvider) Exists(ctx context.Context, key string) (bool, error) {
	return p.bucket.IsObjectExist(strings.TrimPrefix(key, "/"))
}

func (p *OSSProvider) Name() string { return "oss" }
