package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/failure"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/mutation"
	"github.com/goliatone/go-donorform/pkg/notify"
	"github.com/goliatone/go-donorform/pkg/person"
)

// Operation names recorded on failures.
const (
	OpVerify  = "profile.verify"
	OpMerge   = "profile.merge"
	OpUpdate  = "profile.update"
	OpRefresh = "profile.refresh"
)

// Message keys the flow notifies with.
const (
	MessageSuccess = "common:alerts.success"
	MessageError   = "common:alerts.error"
)

// CompleteFunc receives the record returned by the update call.
type CompleteFunc func(ctx context.Context, record person.Person)

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithNotifier sets the sink for the update notices.
func WithNotifier(n notify.Notifier) FlowOption {
	return func(f *Flow) {
		if n != nil {
			f.notifier = n
		}
	}
}

// WithTranslator sets the function used to translate notice keys.
func WithTranslator(t i18n.Func) FlowOption {
	return func(f *Flow) {
		if t != nil {
			f.translate = t
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Flow runs the name-update sequence. It is safe for concurrent use, though
// a form container only runs one at a time.
type Flow struct {
	verifier  auth.Verifier
	update    *mutation.Mutation[person.UpdatePerson, person.Person]
	notifier  notify.Notifier
	translate i18n.Func
	logger    *slog.Logger
}

// NewFlow wires a flow over the credential check and the person API.
func NewFlow(verifier auth.Verifier, updater person.Updater, opts ...FlowOption) *Flow {
	f := &Flow{
		verifier:  verifier,
		notifier:  notify.Discard,
		translate: i18n.Identity,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}

	f.update = mutation.New(
		updater.UpdateCurrentPerson,
		mutation.OnSuccess[person.UpdatePerson, person.Person](func(ctx context.Context, _ person.Person, _ person.UpdatePerson) {
			f.notifier.Notify(ctx, f.translate(MessageSuccess), notify.LevelSuccess)
		}),
		mutation.OnError[person.UpdatePerson, person.Person](func(ctx context.Context, err error, _ person.UpdatePerson) {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.notifier.Notify(ctx, f.translate(MessageError), notify.LevelError)
		}),
	)
	return f
}

// UpdateState reports the state of the most recent update call.
func (f *Flow) UpdateState() mutation.State[person.Person] {
	return f.update.State()
}

// Run executes the sequence for current with the submitted values:
//
//  1. verify current.Email with the entered password; failure aborts with
//     a KindAuth error and the update is not attempted;
//  2. update the name through the mutation;
//  3. verify again to refresh session claims, ignoring failure;
//  4. call done with the returned record.
//
// A cancelled ctx aborts with a KindCanceled error and done is not called.
func (f *Flow) Run(ctx context.Context, current person.Person, values form.Values, done CompleteFunc) (person.Person, error) {
	creds := auth.Credentials{Email: current.Email, Password: values.String(FieldPassword)}

	if _, err := f.verifier.Verify(ctx, creds); err != nil {
		if ctx.Err() != nil {
			return person.Person{}, failure.New(failure.KindCanceled, OpVerify, ctx.Err())
		}
		return person.Person{}, failure.Auth(OpVerify, err)
	}

	update, err := person.Merge(current, map[string]any{
		FieldFirstName: values.String(FieldFirstName),
		FieldLastName:  values.String(FieldLastName),
	})
	if err != nil {
		return person.Person{}, failure.Unhandled(OpMerge, err)
	}

	record, err := f.update.Mutate(ctx, update)
	if err != nil {
		return person.Person{}, failure.Network(OpUpdate, err)
	}

	if _, err := f.verifier.Verify(ctx, creds); err != nil {
		f.logger.WarnContext(ctx, "session refresh failed", slog.String("op", OpRefresh), slog.Any("error", err))
	}

	if err := ctx.Err(); err != nil {
		return person.Person{}, failure.New(failure.KindCanceled, OpRefresh, err)
	}
	if done != nil {
		done(ctx, record)
	}
	return record, nil
}
