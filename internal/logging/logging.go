// Package logging builds the zap logger used across the library,
// with field-level redaction of the personal data an interview
// collects.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level     string          `koanf:"level"`
	Format    string          `koanf:"format"`
	Redaction RedactionConfig `koanf:"redaction"`
}

// RedactionConfig controls sensitive-field redaction.
type RedactionConfig struct {
	Enabled bool     `koanf:"enabled"`
	Fields  []string `koanf:"fields"`
}

// NewDefaultConfig returns production-ready defaults. Redaction covers
// the birth facts an interview collects plus the usual credentials.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Redaction: RedactionConfig{
			Enabled: true,
			Fields: []string{
				"birth_year", "birth_month", "birth_day", "birth_time",
				"gender", "api_key", "token", "secret", "authorization",
			},
		},
	}
}

// New builds a zap logger from config.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" {
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encoderCfg)
	}
	if cfg.Redaction.Enabled {
		enc = newRedactingEncoder(enc, cfg.Redaction.Fields)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	return zap.New(core), nil
}

// RedactedString renders a value as its length only.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, fmt.Sprintf("[REDACTED:%d]", len(val)))
}

// redactingEncoder replaces the values of configured fields before
// they reach the underlying encoder.
type redactingEncoder struct {
	zapcore.Encoder
	fields map[string]bool
}

func newRedactingEncoder(base zapcore.Encoder, fields []string) *redactingEncoder {
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[strings.ToLower(f)] = true
	}
	return &redactingEncoder{Encoder: base, fields: m}
}

func (e *redactingEncoder) Clone() zapcore.Encoder {
	return &redactingEncoder{Encoder: e.Encoder.Clone(), fields: e.fields}
}

func (e *redactingEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if e.fields[strings.ToLower(f.Key)] {
			out[i] = RedactedString(f.Key, fieldValue(f))
			continue
		}
		out[i] = f
	}
	return e.Encoder.EncodeEntry(entry, out)
}

func fieldValue(f zapcore.Field) string {
	if f.Type == zapcore.StringType {
		return f.String
	}
	return fmt.Sprint(f.Integer)
}
