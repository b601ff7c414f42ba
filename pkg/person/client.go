package person

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

	"github.com/goliatone/go-donorform/pkg/auth"
)

const maxResponseBytes = 1 << 20

// Updater persists changes to the signed-in person.
type Updater interface {
	UpdateCurrentPerson(ctx context.Context, update UpdatePerson) (Person, error)
}

// UpdaterFunc adapts a function into an Updater.
type UpdaterFunc func(ctx context.Context, update UpdatePerson) (Person, error)

// UpdateCurrentPerson calls fn.
func (fn UpdaterFunc) UpdateCurrentPerson(ctx context.Context, update UpdatePerson) (Person, error) {
	return fn(ctx, update)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the account endpoints of the platform API.
type Client struct {
	baseURL string
	tokens  auth.TokenSource
	client  *http.Client
	logger  *slog.Logger
}

var _ Updater = (*Client)(nil)

// NewClient builds a Client for the API rooted at baseURL. tokens supplies
// the bearer token for every call.
func NewClient(baseURL string, tokens auth.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// CurrentPerson fetches the signed-in person.
func (c *Client) CurrentPerson(ctx context.Context) (Person, error) {
	return c.do(ctx, http.MethodGet, nil)
}

// UpdateCurrentPerson sends PUT {baseURL}/account/me. Non-2xx responses
// return *APIError.
func (c *Client) UpdateCurrentPerson(ctx context.Context, update UpdatePerson) (Person, error) {
	body, err := sonic.Marshal(update)
	if err != nil {
		return Person{}, fmt.Errorf("person: encode update: %w", err)
	}
	return c.do(ctx, http.MethodPut, body)
}

func (c *Client) do(ctx context.Context, method string, body []byte) (Person, error) {
	if c.tokens == nil {
		return Person{}, fmt.Errorf("person: %w", auth.ErrNoSession)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Person{}, fmt.Errorf("person: token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/account/me", reader)
	if err != nil {
		return Person{}, fmt.Errorf("person: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Person{}, fmt.Errorf("person: %s account: %w", strings.ToLower(method), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Person{}, fmt.Errorf("person: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, payload)
		c.logger.WarnContext(ctx, "account request failed",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return Person{}, apiErr
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return Person{}, ErrNoRecord
	}
	var out Person
	if err := sonic.Unmarshal(payload, &out); err != nil {
		return Person{}, fmt.Errorf("person: decode response: %w", err)
	}
	return out, nil
}
