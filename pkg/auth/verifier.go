package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const maxResponseBytes = 1 << 20

// Verifier checks credentials and returns the session they establish.
type Verifier interface {
	Verify(ctx context.Context, creds Credentials) (*Session, error)
}

// VerifierFunc adapts a function into a Verifier.
type VerifierFunc func(ctx context.Context, creds Credentials) (*Session, error)

// Verify calls fn.
func (fn VerifierFunc) Verify(ctx context.Context, creds Credentials) (*Session, error) {
	return fn(ctx, creds)
}

// Option configures an HTTPVerifier.
type Option func(*HTTPVerifier)

// WithHTTPClient overrides the HTTP client. Defaults to a client with a 15s
// timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(v *HTTPVerifier) {
		if client != nil {
			v.client = client
		}
	}
}

// WithStore records every verified session in store.
func WithStore(store *MemoryStore) Option {
	return func(v *HTTPVerifier) {
		v.store = store
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *HTTPVerifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// HTTPVerifier posts credentials to {baseURL}/login.
type HTTPVerifier struct {
	baseURL string
	client  *http.Client
	store   *MemoryStore
	logger  *slog.Logger
}

var _ Verifier = (*HTTPVerifier)(nil)

// NewHTTPVerifier constructs a verifier for the API rooted at baseURL.
func NewHTTPVerifier(baseURL string, opts ...Option) *HTTPVerifier {
	v := &HTTPVerifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Verify returns ErrInvalidCredentials when the API answers 400, 401 or 403.
func (v *HTTPVerifier) Verify(ctx context.Context, creds Credentials) (*Session, error) {
	body, err := sonic.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("auth: encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: login request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("auth: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		v.logger.DebugContext(ctx, "login rejected", slog.Int("status", resp.StatusCode))
		return nil, ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("auth: login failed with status %d", resp.StatusCode)
	}

	var out loginResponse
	if err := sonic.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("auth: decode response: %w", err)
	}

	session, err := SessionFromToken(out.AccessToken)
	if err != nil {
		return nil, err
	}
	session.RefreshToken = out.RefreshToken
	if v.store != nil {
		v.store.Set(session)
	}
	v.logger.DebugContext(ctx, "login verified", slog.String("subject", session.Subject))
	return session, nil
}
