package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/goliatone/go-donorform/internal/config"
	"github.com/goliatone/go-donorform/internal/logging"
	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/failure"
	"github.com/goliatone/go-donorform/pkg/fields"
	"github.com/goliatone/go-donorform/pkg/fileinput"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/notify"
	"github.com/goliatone/go-donorform/pkg/page"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/profile"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/renderers/tui"
	"github.com/goliatone/go-donorform/pkg/validation"
)

const usage = `usage: donorform-cli [flags] <command> [args]

commands:
  subscribe                 fill the newsletter form and print the payload
  update-name               change the signed-in person's name
  summary <id>              print a campaign application summary
  upload <id> <file>...     attach files to a campaign application
`

type app struct {
	cfg       config.Config
	api       string
	logger    *slog.Logger
	catalog   *i18n.Catalog
	opts      render.RenderOptions
	terminal  *notify.Terminal
	renderer  *tui.Renderer
	store     *auth.MemoryStore
	verifier  *auth.HTTPVerifier
	people    *person.Client
	campaigns *campaignapp.Client
	accept    []string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		apiFlag    = flag.String("api", cfg.APIURL, "Donation platform API base URL")
		localeFlag = flag.String("locale", cfg.Locale, "Message locale")
		formatFlag = flag.String("format", string(tui.OutputFormatJSON), "Payload format for subscribe (json, form, pretty)")
		acceptFlag = flag.String("accept", "image/*,.pdf,.doc,.docx", "File types accepted by upload")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, cfg)
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}
	renderer, err := tui.New(
		tui.WithOutput(os.Stdout),
		tui.WithOutputFormat(tui.OutputFormat(*formatFlag)),
	)
	if err != nil {
		log.Fatalf("configure prompts: %v", err)
	}

	catalog := i18n.MustLoadEmbedded()
	store := auth.NewMemoryStore()
	a := &app{
		cfg:     cfg,
		api:     *apiFlag,
		logger:  logger,
		catalog: catalog,
		opts: render.RenderOptions{
			Locale:     catalog.Match(*localeFlag),
			Translator: catalog,
		},
		terminal: notify.NewTerminal(os.Stdout),
		renderer: renderer,
		store:    store,
		verifier: auth.NewHTTPVerifier(*apiFlag, auth.WithStore(store), auth.WithLogger(logger)),
		people:   person.NewClient(*apiFlag, store, person.WithLogger(logger)),
		campaigns: campaignapp.NewClient(*apiFlag, store,
			campaignapp.WithParallelism(cfg.UploadParallelism),
			campaignapp.WithLogger(logger),
		),
		accept: fileinput.ParseAccept(*acceptFlag),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	command, rest := args[0], args[1:]
	switch command {
	case "subscribe":
		out, err := a.renderer.Render(ctx, page.SubscriptionForm(), a.opts)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "update-name":
		if err := a.signIn(ctx); err != nil {
			return err
		}
		return a.updateName(ctx)
	case "summary":
		if len(rest) != 1 {
			return errors.New("expected an application id")
		}
		if err := a.signIn(ctx); err != nil {
			return err
		}
		return a.summary(ctx, rest[0])
	case "upload":
		if len(rest) < 2 {
			return errors.New("expected an application id and at least one file")
		}
		if err := a.signIn(ctx); err != nil {
			return err
		}
		return a.upload(ctx, rest[0], rest[1:])
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func loginForm() model.FormModel {
	return model.FormModel{
		ID:          "login",
		Title:       "Sign in",
		SubmitLabel: "common:actions.submit",
		Fields:      []model.Field{fields.Email("email"), fields.Password()},
	}
}

// signIn uses the configured credentials, or prompts for them.
func (a *app) signIn(ctx context.Context) error {
	if _, ok := a.store.Session(); ok {
		return nil
	}
	if a.cfg.Email != "" && a.cfg.Password != "" {
		_, err := a.verifier.Verify(ctx, auth.Credentials{Email: a.cfg.Email, Password: a.cfg.Password})
		return err
	}

	decl := loginForm()
	schema, err := validation.FromForm(decl)
	if err != nil {
		return err
	}
	container, err := form.New(form.Values{"email": a.cfg.Email}, schema, func(ctx context.Context, values form.Values) error {
		_, err := a.verifier.Verify(ctx, auth.Credentials{
			Email:    values.String("email"),
			Password: values.String("password"),
		})
		return err
	}, form.WithLogger(a.logger))
	if err != nil {
		return err
	}
	if err := a.renderer.Fill(ctx, decl, container, a.opts); err != nil {
		return err
	}
	if err := container.Submit(ctx); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			a.terminal.Notify(ctx, a.opts.Func()("auth:alerts.invalid-login"), notify.LevelError)
		}
		return err
	}
	return nil
}

// updateName keeps prompting while the modal stays open. Validation problems
// and rejected updates leave it open; success or a failed password check
// close it.
func (a *app) updateName(ctx context.Context) error {
	current, err := a.people.CurrentPerson(ctx)
	if err != nil {
		return err
	}
	translate := a.opts.Func()

	flow := profile.NewFlow(a.verifier, a.people,
		profile.WithNotifier(a.terminal),
		profile.WithTranslator(translate),
		profile.WithLogger(a.logger),
	)
	handler := failure.NewHandler(
		failure.WithLogger(a.logger),
		failure.WithNotifier(a.terminal),
		failure.WithTranslator(translate),
	)
	modal, err := profile.NewModal(flow, current,
		profile.WithHandler(handler),
		profile.WithModalLogger(a.logger),
		profile.WithOnClose(func(ctx context.Context, record *person.Person) {
			if record != nil {
				a.logger.InfoContext(ctx, "name updated", slog.String("name", record.FullName()))
			}
		}),
	)
	if err != nil {
		return err
	}
	if err := modal.Open(); err != nil {
		return err
	}

	for modal.IsOpen() {
		if err := a.renderer.Fill(ctx, modal.Declaration(), modal.Form(), a.opts); err != nil {
			modal.Close(ctx)
			return err
		}
		err := modal.Submit(ctx)
		var invalid *form.InvalidError
		if err != nil && !errors.As(err, &invalid) {
			return err
		}
	}
	return nil
}

func (a *app) summary(ctx context.Context, id string) error {
	application, err := a.campaigns.Get(ctx, id)
	if err != nil {
		return err
	}
	report := campaignapp.Summarize(campaignapp.SummaryInput{Application: &application}, a.opts.Func())
	return a.renderer.RenderReport(ctx, report)
}

func (a *app) upload(ctx context.Context, id string, paths []string) error {
	files, err := fileinput.FromPaths(paths...)
	if err != nil {
		return err
	}

	var uploaded campaignapp.FileResults
	picker := fileinput.Picker{
		Accept:   a.accept,
		Multiple: true,
		OnUpload: func(ctx context.Context, files []fileinput.File) error {
			results, err := a.campaigns.UploadFiles(ctx, id, files)
			uploaded.Successful = append(uploaded.Successful, results.Successful...)
			uploaded.Failed = append(uploaded.Failed, results.Failed...)
			return err
		},
	}
	_, rejected := picker.Filter(files)
	for _, file := range rejected {
		uploaded.Failed = append(uploaded.Failed, file.Name)
	}
	if err := picker.Select(ctx, files); err != nil && !errors.Is(err, fileinput.ErrNotAccepted) {
		a.logger.ErrorContext(ctx, "upload failed", slog.String("application", id), slog.Any("error", err))
		a.terminal.Notify(ctx, a.opts.Func()("common:alerts.error"), notify.LevelError)
	}

	in := campaignapp.SummaryInput{Uploaded: uploaded, IsEdit: true}
	if application, err := a.campaigns.Get(ctx, id); err == nil {
		in.Application = &application
	}
	return a.renderer.RenderReport(ctx, campaignapp.Summarize(in, a.opts.Func()))
}
