// Package logging builds the zap logger shared by every command.
//
// Logs always go to stderr because the MCP transport owns stdout. When File
// is set, entries are also written to a rotating file.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls level, encoding and the optional rotating file.
type Config struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" json:"format" yaml:"format" default:"console" validate:"oneof=json console"`
	File       string `mapstructure:"file" json:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size" yaml:"max_size" default:"100"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age" yaml:"max_age" default:"7"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups" default:"10"`
	Compress   bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns console logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 10,
	}
}

// ZapLevel converts Level, falling back to info.
func (c Config) ZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (c Config) encoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if c.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// fileWriter returns a rotating writer for c.File.
func (c Config) fileWriter() zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	})
}

// New builds a logger from cfg.
func New(cfg Config) *zap.Logger {
	return newWithSink(cfg, zapcore.Lock(os.Stderr))
}

func newWithSink(cfg Config, sink zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevelAt(cfg.ZapLevel())
	enc := cfg.encoder()

	cores := []zapcore.Core{zapcore.NewCore(enc, sink, level)}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(enc.Clone(), cfg.fileWriter(), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
