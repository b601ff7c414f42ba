// Package config loads the binaries' settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Log formats accepted by LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the settings shared by donorform-web and donorform-cli.
type Config struct {
	APIURL            string `env:"DONORFORM_API_URL" envDefault:"http://localhost:5010/api/v1"`
	ListenAddr        string `env:"DONORFORM_LISTEN_ADDR" envDefault:":8080"`
	Locale            string `env:"DONORFORM_LOCALE" envDefault:"bg"`
	LogLevel          string `env:"DONORFORM_LOG_LEVEL" envDefault:"info"`
	LogFormat         string `env:"DONORFORM_LOG_FORMAT" envDefault:"text"`
	Theme             string `env:"DONORFORM_THEME"`
	ThemeVariant      string `env:"DONORFORM_THEME_VARIANT"`
	ThemeFile         string `env:"DONORFORM_THEME_FILE"`
	TemplatesDir      string `env:"DONORFORM_TEMPLATES_DIR"`
	UploadParallelism int    `env:"DONORFORM_UPLOAD_PARALLELISM" envDefault:"3"`
	// Email and Password sign the binaries in at startup when set.
	Email    string `env:"DONORFORM_EMAIL"`
	Password string `env:"DONORFORM_PASSWORD"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	err := ozzo.ValidateStruct(&c,
		ozzo.Field(&c.APIURL, ozzo.Required, is.URL),
		ozzo.Field(&c.ListenAddr, ozzo.Required),
		ozzo.Field(&c.Locale, ozzo.Required),
		ozzo.Field(&c.LogLevel, ozzo.By(func(any) error {
			_, err := c.SlogLevel()
			return err
		})),
		ozzo.Field(&c.LogFormat, ozzo.In(LogFormatText, LogFormatJSON)),
		ozzo.Field(&c.UploadParallelism, ozzo.Required, ozzo.Min(1), ozzo.Max(16)),
		ozzo.Field(&c.Email, is.EmailFormat),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}
