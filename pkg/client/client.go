package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBody = 10 << 20 // 10 MB

// TokenSource yields the bearer token for outgoing requests.
// An empty token means the request is sent without Authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client is the marketplace API client.
type Client struct {
	baseURL        string
	tokens         TokenSource
	httpClient     *http.Client
	logger         *zap.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthorizedHandler registers fn to run whenever the API answers 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new API client. baseURL is the backend origin without a trailing slash.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes one call through Do.
type RequestOptions struct {
	Method  string // defaults to GET
	Query   url.Values
	Body    any // JSON-encoded unless it is a *Multipart
	Headers map[string]string
	// NoAuth skips the token source entirely.
	NoAuth bool
}

// Multipart is a multipart/form-data request body.
type Multipart struct {
	Fields []FormField
	Files  []FilePart
}

// FormField is a plain form value.
type FormField struct {
	Name  string
	Value string
}

// FilePart is an uploaded file.
type FilePart struct {
	Field    string
	FileName string
	Data     []byte
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Do sends a request to path and decodes the response into out.
//
// A path starting with "http" is used as-is; anything else is joined to the
// base URL. JSON responses are decoded into out; text responses are stored
// into out when it is a *string. A non-2xx status yields an *HTTPError.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := path
	if !strings.HasPrefix(path, "http") {
		target = c.baseURL + path
	}
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + opts.Query.Encode()
	}

	var (
		reqBody     io.Reader
		contentType string
	)
	switch body := opts.Body.(type) {
	case nil:
	case *Multipart:
		r, ct, err := body.encode()
		if err != nil {
			return fmt.Errorf("encode multipart: %w", err)
		}
		reqBody, contentType = r, ct
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range opts.Headers {
		if strings.EqualFold(k, "Authorization") {
			continue
		}
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	hasToken := false
	if !opts.NoAuth && c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
			hasToken = true
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("url", target),
			zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Bool("has_token", hasToken),
		zap.String("request_id", reqID),
	)

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload := parseBody(data, ct)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.logger.Warn("unauthorized response, clearing session", zap.String("url", target))
			c.onUnauthorized()
		}
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, payload),
			Data:       payload,
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if s, ok := out.(*string); ok && !isJSON(ct) {
		*s = string(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if !isJSON(ct) {
			return fmt.Errorf("decode response: unexpected content type %q", ct)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// parseBody returns the decoded JSON value when the body is JSON (declared or
// sniffed when no content type is set), otherwise the raw text.
func parseBody(data []byte, contentType string) any {
	if len(data) == 0 {
		return nil
	}
	if isJSON(contentType) || contentType == "" {
		var v any
		if json.Unmarshal(data, &v) == nil {
			return v
		}
	}
	return string(data)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, path, RequestOptions{}, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPost, Body: body}, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPut, Body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.Do(ctx, path, RequestOptions{Method: http.MethodDelete}, nil)
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
