package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrTooLarge is returned when a response body exceeds Config.MaxBytes.
var ErrTooLarge = errors.New("response body too large")

// Fetcher retrieves the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config controls HTTPFetcher.
type Config struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" default:"10s"`

	// Retries is the number of extra attempts after a transient failure
	// (network error or 5xx status).
	Retries int `mapstructure:"retries" json:"retries" yaml:"retries" default:"2" validate:"gte=0,lte=10"`

	// MaxBytes caps the response body. Zero means no limit.
	MaxBytes int64 `mapstructure:"max_bytes" json:"max_bytes" yaml:"max_bytes" default:"20971520" validate:"gte=0"`

	// UserAgent is sent with every request when set.
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent" default:"image-pipeline"`
}

// DefaultConfig returns a 10s timeout, 2 retries and a 20 MiB limit.
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Second,
		Retries:   2,
		MaxBytes:  20 << 20,
		UserAgent: "image-pipeline",
	}
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPFetcher downloads images over HTTP.
type HTTPFetcher struct {
	client  *http.Client
	cfg     Config
	logger  *zap.Logger
	backoff time.Duration
}

// NewHTTPFetcher creates a fetcher. A nil logger discards log output.
func NewHTTPFetcher(cfg Config, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		logger:  logger,
		backoff: 200 * time.Millisecond,
	}
}

// Fetch downloads url. Network errors and 5xx responses are retried up to
// Config.Retries times with exponential backoff; other failures return at
// once.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.Retries; attempt++ {
		if attempt > 0 {
			wait := f.backoff << (attempt - 1)
			f.logger.Debug("retrying fetch",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, errors.Wrapf(ctx.Err(), "fetch %s", url)
			case <-time.After(wait):
			}
		}

		data, retry, err := f.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}

	f.logger.Warn("fetch failed", zap.String("url", url), zap.Error(lastErr))
	return nil, lastErr
}

// get performs one attempt and reports whether a failure is worth retrying.
func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, errors.Wrapf(err, "build request for %s", url)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, resp.StatusCode >= 500, errors.WithStack(&StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	var body io.Reader = resp.Body
	if f.cfg.MaxBytes > 0 {
		if resp.ContentLength > f.cfg.MaxBytes {
			return nil, false, errors.Wrapf(ErrTooLarge, "fetch %s: %d bytes", url, resp.ContentLength)
		}
		body = io.LimitReader(resp.Body, f.cfg.MaxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, true, errors.Wrapf(err, "read body of %s", url)
	}
	if f.cfg.MaxBytes > 0 && int64(len(data)) > f.cfg.MaxBytes {
		return nil, false, errors.Wrapf(ErrTooLarge, "fetch %s: more than %d bytes", url, f.cfg.MaxBytes)
	}
	return data, false, nil
}
