// Package config loads the image-pipeline configuration from an optional
// YAML/JSON/TOML file and IMAGE_PIPELINE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-viper/mapstructure/v2"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/iluckin/image/internal/fetch"
	"github.com/iluckin/image/internal/logging"
	"github.com/iluckin/image/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g.
// IMAGE_PIPELINE_FETCH_TIMEOUT=5s.
const EnvPrefix = "IMAGE_PIPELINE"

// Config is the root configuration.
type Config struct {
	Log      logging.Config `mapstructure:"log" json:"log" yaml:"log"`
	Fetch    FetchConfig    `mapstructure:"fetch" json:"fetch" yaml:"fetch"`
	Pipeline PipelineConfig `mapstructure:"pipeline" json:"pipeline" yaml:"pipeline"`
	HTTP     HTTPConfig     `mapstructure:"http" json:"http" yaml:"http"`
	Storage  storage.Config `mapstructure:"storage" json:"storage" yaml:"storage"`
}

// FetchConfig configures remote sources.
type FetchConfig struct {
	fetch.Config `mapstructure:",squash"`
	Cache        CacheConfig `mapstructure:"cache" json:"cache" yaml:"cache"`
}

// CacheConfig selects the fetch cache. An empty RedisAddr keeps the cache
// in memory.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	MaxEntries    int           `mapstructure:"max_entries" json:"max_entries" yaml:"max_entries" default:"256" validate:"gte=0"`
	RedisAddr     string        `mapstructure:"redis_addr" json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" json:"-" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" json:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl" default:"1h"`
}

// PipelineConfig tunes the imaging loader.
type PipelineConfig struct {
	Workers  int    `mapstructure:"workers" json:"workers" yaml:"workers" validate:"gte=0"`
	FontPath string `mapstructure:"font_path" json:"font_path" yaml:"font_path"`
}

// HTTPConfig configures the HTTP API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr" yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout" default:"10s"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" json:"max_body_bytes" yaml:"max_body_bytes" default:"33554432" validate:"gt=0"`
}

var validate = validatorV10.New()

// Default returns the configuration used when nothing is overridden.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path (when not empty), applies environment overrides and
// fills in defaults for everything left unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	// AutomaticEnv only applies to keys viper already knows about.
	bindKeys(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults after unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validatorV10.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("config %s %s", fe.Namespace(), validationMessage(fe))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Storage.Type == "oss" && (c.Storage.OSS.Endpoint == "" || c.Storage.OSS.Bucket == "") {
		return fmt.Errorf("config storage.oss requires endpoint and bucket")
	}
	return nil
}

func validationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}

// bindKeys registers every leaf key of cfg with its current value as the
// viper default so environment variables can override it.
func bindKeys(v *viper.Viper, cfg *Config) {
	settings := map[string]any{}
	if err := mapstructure.Decode(*cfg, &settings); err != nil {
		return
	}
	setDefaults(v, "", settings)
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}
