package config_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-donorform/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	got, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Config{
		APIURL:            "http://localhost:5010/api/v1",
		ListenAddr:        ":8080",
		Locale:            "bg",
		LogLevel:          "info",
		LogFormat:         "text",
		UploadParallelism: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("DONORFORM_API_URL", "https://api.example.org/v1")
	t.Setenv("DONORFORM_LOG_LEVEL", "debug")
	t.Setenv("DONORFORM_LOG_FORMAT", "json")
	t.Setenv("DONORFORM_UPLOAD_PARALLELISM", "5")

	got, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.APIURL != "https://api.example.org/v1" || got.LogFormat != "json" || got.UploadParallelism != 5 {
		t.Fatalf("unexpected config %+v", got)
	}
	level, err := got.SlogLevel()
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	if level != slog.LevelDebug {
		t.Fatalf("level = %v, want debug", level)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"api url":              func(c *config.Config) { c.APIURL = "not a url" },
		"log level":            func(c *config.Config) { c.LogLevel = "loud" },
		"log format":           func(c *config.Config) { c.LogFormat = "xml" },
		"parallelism":          func(c *config.Config) { c.UploadParallelism = 0 },
		"parallelism negative": func(c *config.Config) { c.UploadParallelism = -2 },
		"parallelism too high": func(c *config.Config) { c.UploadParallelism = 17 },
		"email":                func(c *config.Config) { c.Email = "nope" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Config{
				APIURL:            "http://localhost/api",
				ListenAddr:        ":8080",
				Locale:            "en",
				LogLevel:          "info",
				LogFormat:         "text",
				UploadParallelism: 3,
			}
			mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.HasPrefix(err.Error(), "config: ") {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}
