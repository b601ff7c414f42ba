package campaignapp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/fileinput"
)

const (
	maxResponseBytes = 1 << 20
	defaultParallel  = 3
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithParallelism bounds concurrent file requests. Defaults to 3.
func WithParallelism(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.parallel = n
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the campaign application endpoints.
type Client struct {
	baseURL  string
	tokens   auth.TokenSource
	client   *http.Client
	parallel int
	logger   *slog.Logger
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, tokens auth.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:   tokens,
		client:   &http.Client{Timeout: 30 * time.Second},
		parallel: defaultParallel,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Get fetches an application by id.
func (c *Client) Get(ctx context.Context, id string) (Application, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/campaign-application/byId/"+url.PathEscape(id), nil)
	if err != nil {
		return Application{}, err
	}
	payload, err := c.do(req)
	if err != nil {
		return Application{}, err
	}
	var out Application
	if err := sonic.Unmarshal(payload, &out); err != nil {
		return Application{}, fmt.Errorf("campaignapp: decode application: %w", err)
	}
	return out, nil
}

// UploadFiles uploads each file to the application concurrently. Per-file
// failures are reported in FileResults.Failed; the error is only set when
// ctx ends. Names keep the input order.
func (c *Client) UploadFiles(ctx context.Context, id string, files []fileinput.File) (FileResults, error) {
	outcomes := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for i, file := range files {
		g.Go(func() error {
			if err := c.upload(gctx, id, file); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.WarnContext(ctx, "file upload failed", slog.String("file", file.Name), slog.Any("error", err))
				return nil
			}
			outcomes[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FileResults{}, fmt.Errorf("campaignapp: upload files: %w", err)
	}
	return splitResults(files, outcomes, func(f fileinput.File) string { return f.Name }), nil
}

// DeleteFiles removes documents concurrently, reporting outcomes by
// filename.
func (c *Client) DeleteFiles(ctx context.Context, docs []Document) (FileResults, error) {
	outcomes := make([]bool, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for i, doc := range docs {
		g.Go(func() error {
			req, err := c.newRequest(gctx, http.MethodDelete, "/campaign-application/fileById/"+url.PathEscape(doc.ID), nil)
			if err == nil {
				_, err = c.do(req)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.WarnContext(ctx, "file delete failed", slog.String("file", doc.Filename), slog.Any("error", err))
				return nil
			}
			outcomes[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FileResults{}, fmt.Errorf("campaignapp: delete files: %w", err)
	}
	return splitResults(docs, outcomes, func(d Document) string { return d.Filename }), nil
}

func (c *Client) upload(ctx context.Context, id string, file fileinput.File) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/campaign-application/uploadFile/"+url.PathEscape(id), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, err = c.do(req)
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("campaignapp: %w", auth.ErrNoSession)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaignapp: token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("campaignapp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campaignapp: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("campaignapp: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Path: req.URL.Path}
	}
	return payload, nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("campaignapp: %s returned status %d", e.Path, e.Status)
}

func splitResults[T any](items []T, ok []bool, name func(T) string) FileResults {
	results := FileResults{Successful: []string{}, Failed: []string{}}
	for i, item := range items {
		if ok[i] {
			results.Successful = append(results.Successful, name(item))
		} else {
			results.Failed = append(results.Failed, name(item))
		}
	}
	return results
}
