package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2, cfg.Fetch.Retries)
	assert.Equal(t, int64(20<<20), cfg.Fetch.MaxBytes)
	assert.Equal(t, "image-pipeline", cfg.Fetch.UserAgent)
	assert.False(t, cfg.Fetch.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Fetch.Cache.TTL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "uploads", cfg.Storage.Local.BasePath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
log:
  level: debug
  format: json
fetch:
  timeout: 3s
  retries: 4
  cache:
    enabled: true
    redis_addr: localhost:6379
pipeline:
  workers: 2
  font_path: /fonts/a.ttf
http:
  addr: 127.0.0.1:9000
storage:
  type: local
  local:
    base_path: /tmp/out
    base_url: https://cdn.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 4, cfg.Fetch.Retries)
	assert.Equal(t, int64(20<<20), cfg.Fetch.MaxBytes, "unset keys keep defaults")
	assert.True(t, cfg.Fetch.Cache.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Fetch.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, "/fonts/a.ttf", cfg.Pipeline.FontPath)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, "/tmp/out", cfg.Storage.Local.BasePath)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.Local.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IMAGE_PIPELINE_HTTP_ADDR", ":7070")
	t.Setenv("IMAGE_PIPELINE_FETCH_TIMEOUT", "1500ms")
	t.Setenv("IMAGE_PIPELINE_FETCH_CACHE_ENABLED", "true")
	t.Setenv("IMAGE_PIPELINE_PIPELINE_WORKERS", "3")

	path := writeConfig(t, "config.yaml", "http:\n  addr: \":9000\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr, "env wins over file")
	assert.Equal(t, 1500*time.Millisecond, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.Cache.Enabled)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"log level", "log:\n  level: loud\n", "Level"},
		{"storage type", "storage:\n  type: s3\n", "Type"},
		{"oss without bucket", "storage:\n  type: oss\n", "storage.oss"},
		{"negative retries", "fetch:\n  retries: -1\n", "Retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
