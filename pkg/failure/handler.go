package failure

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goliatone/go-donorform/pkg/notify"
)

// Reaction tells the caller what the handler decided.
type Reaction struct {
	Kind Kind
	// Notified is true when a user-visible notice was emitted.
	Notified bool
	// Close is true when the hosting view should close.
	Close bool
}

// Policy describes how one kind is surfaced.
type Policy struct {
	// MessageKey is translated and sent to the notifier when set.
	MessageKey string
	Level      notify.Level
	LogLevel   slog.Level
	Close      bool
}

// Handler is the single place where classified errors are logged or turned
// into notifications. It never returns the error.
type Handler struct {
	logger    *slog.Logger
	notifier  notify.Notifier
	translate func(key string, args ...any) string
	policies  map[Kind]Policy
}

// HandlerOption customises a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithNotifier sets the notification sink. Defaults to notify.Discard.
func WithNotifier(n notify.Notifier) HandlerOption {
	return func(h *Handler) {
		if n != nil {
			h.notifier = n
		}
	}
}

// WithTranslator sets the function used to translate policy message keys.
func WithTranslator(fn func(key string, args ...any) string) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.translate = fn
		}
	}
}

// WithPolicy overrides the policy for kind.
func WithPolicy(kind Kind, policy Policy) HandlerOption {
	return func(h *Handler) {
		h.policies[kind] = policy
	}
}

// DefaultPolicies returns the built-in routing. Network errors are only
// logged because the mutation that failed already notified the user.
func DefaultPolicies() map[Kind]Policy {
	return map[Kind]Policy{
		KindValidation: {LogLevel: slog.LevelDebug},
		KindAuth: {
			MessageKey: "auth:alerts.invalid-login",
			Level:      notify.LevelError,
			LogLevel:   slog.LevelWarn,
			Close:      true,
		},
		KindNetwork:   {LogLevel: slog.LevelError},
		KindCanceled:  {LogLevel: slog.LevelDebug},
		KindUnhandled: {LogLevel: slog.LevelError},
	}
}

// NewHandler constructs a Handler with DefaultPolicies.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		logger:    slog.New(slog.DiscardHandler),
		notifier:  notify.Discard,
		translate: func(key string, _ ...any) string { return key },
		policies:  DefaultPolicies(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

// Handle logs err and emits the notice its kind calls for. A nil err is a
// no-op and returns the zero Reaction.
func (h *Handler) Handle(ctx context.Context, err error) Reaction {
	if err == nil {
		return Reaction{}
	}
	kind, policy := h.policy(err)

	attrs := []any{slog.String("kind", string(kind)), slog.Any("error", err)}
	var fe *Error
	if errors.As(err, &fe) && fe.Op != "" {
		attrs = append(attrs, slog.String("op", fe.Op))
	}
	h.logger.Log(ctx, policy.LogLevel, "flow failed", attrs...)

	reaction := Reaction{Kind: kind, Close: policy.Close}
	if policy.MessageKey != "" {
		h.notifier.Notify(ctx, h.translate(policy.MessageKey), policy.Level)
		reaction.Notified = true
	}
	return reaction
}

// Closes reports whether the policy for err closes the hosting view. Callers
// close before Handle so the notice outlives the view.
func (h *Handler) Closes(err error) bool {
	if err == nil {
		return false
	}
	_, policy := h.policy(err)
	return policy.Close
}

func (h *Handler) policy(err error) (Kind, Policy) {
	kind := KindOf(err)
	policy, ok := h.policies[kind]
	if !ok {
		policy = h.policies[KindUnhandled]
	}
	return kind, policy
}
