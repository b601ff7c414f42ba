// Package logging builds the slog loggers used by the binaries.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/goliatone/go-donorform/internal/config"
)

// New returns a logger writing to out in the configured format and level.
func New(out io.Writer, cfg config.Config) (*slog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.LogFormat {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler).With(slog.String("app", "donorform")), nil
}
