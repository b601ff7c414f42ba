package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-donorform/internal/config"
	"github.com/goliatone/go-donorform/internal/logging"
	"github.com/goliatone/go-donorform/internal/web"
	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/renderers/html"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		addrFlag      = flag.String("addr", cfg.ListenAddr, "HTTP listen address")
		apiFlag       = flag.String("api", cfg.APIURL, "Donation platform API base URL")
		themeFlag     = flag.String("theme", cfg.Theme, "Theme name")
		variantFlag   = flag.String("variant", cfg.ThemeVariant, "Theme variant")
		themeFileFlag = flag.String("theme-file", cfg.ThemeFile, "YAML theme manifest")
		templatesFlag = flag.String("templates", cfg.TemplatesDir, "Directory overriding the embedded templates")
		acceptFlag    = flag.String("accept", "image/*,.pdf,.doc,.docx", "File types accepted by the upload form")
		shutdownGrace = flag.Duration("grace", 5*time.Second, "Shutdown grace period")
	)
	flag.Parse()

	logger, err := logging.New(os.Stderr, cfg)
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}
	catalog := i18n.MustLoadEmbedded()

	htmlOptions := []html.Option{
		html.WithDefaultTheme(*themeFlag, *variantFlag),
		html.WithTranslator(catalog),
	}
	if *templatesFlag != "" {
		htmlOptions = append(htmlOptions, html.WithTemplatesDir(*templatesFlag))
	}
	if *themeFileFlag != "" {
		manifest, err := html.LoadManifest(*themeFileFlag)
		if err != nil {
			log.Fatalf("load theme: %v", err)
		}
		htmlOptions = append(htmlOptions, html.WithThemes(manifest))
	}
	renderer, err := html.New(htmlOptions...)
	if err != nil {
		log.Fatalf("configure renderer: %v", err)
	}

	store := auth.NewMemoryStore()
	verifier := auth.NewHTTPVerifier(*apiFlag, auth.WithStore(store), auth.WithLogger(logger))
	if cfg.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		_, err := verifier.Verify(ctx, auth.Credentials{Email: cfg.Email, Password: cfg.Password})
		cancel()
		if err != nil {
			log.Fatalf("sign in: %v", err)
		}
		logger.Info("signed in", slog.String("email", cfg.Email))
	}

	people := person.NewClient(*apiFlag, store, person.WithLogger(logger))
	campaigns := campaignapp.NewClient(*apiFlag, store,
		campaignapp.WithParallelism(cfg.UploadParallelism),
		campaignapp.WithLogger(logger),
	)

	srv, err := web.New(catalog, renderer, verifier, people, campaigns,
		web.WithLogger(logger),
		web.WithLocale(cfg.Locale),
		web.WithTheme(*themeFlag, *variantFlag),
		web.WithAccept(*acceptFlag),
	)
	if err != nil {
		log.Fatalf("configure server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", *addrFlag))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		log.Fatalf("server error: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
