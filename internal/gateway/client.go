package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
)

// SessionClearer destroys a session when the platform signals auth expiry.
type SessionClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// UpstreamObserver records the outcome of one upstream call.
type UpstreamObserver interface {
	ObserveUpstream(method, path string, status int, duration time.Duration)
}

// envelope is the platform API response wrapper. Some endpoints return the
// payload bare, so unwrapping is defensive: when the wrapper keys are absent
// the raw body is decoded as the payload itself.
type envelope struct {
	Status  *string         `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is the single chokepoint for talking to the platform API. It injects
// the caller's bearer token, unwraps the response envelope and maps upstream
// failures onto the console error taxonomy. It never retries: mutations are
// not idempotent upstream.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	sessions SessionClearer
	observer UpstreamObserver
}

// Option customises the client.
type Option func(*Client)

// WithObserver wires upstream call metrics.
func WithObserver(observer UpstreamObserver) Option {
	return func(c *Client) { c.observer = observer }
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// New builds a gateway client for the given platform base URL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, sessions SessionClearer, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Do performs a JSON request against the platform API. body is marshalled as
// JSON when non-nil; the unwrapped payload is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "encode request")
		}
		reader = bytes.NewReader(payload)
	}
	return c.roundTrip(ctx, method, path, reader, "application/json", out)
}

// DoMultipart performs a multipart/form-data request. The caller supplies the
// encoded form body and its boundary-bearing content type.
func (c *Client) DoMultipart(ctx context.Context, method, path string, form io.Reader, contentType string, out interface{}) error {
	return c.roundTrip(ctx, method, path, form, contentType, out)
}

// Download streams a binary response. The caller owns the returned reader.
func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, string, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, "", "", err
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	c.observe(http.MethodGet, path, resp, started, err)
	if err != nil {
		return nil, "", "", c.transportError(path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close() //nolint:errcheck
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", "", c.classify(ctx, resp.StatusCode, raw, path)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := ""
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			filename = params["filename"]
		}
	}
	return resp.Body, contentType, filename, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	c.observe(method, path, resp, started, err)
	if err != nil {
		return c.transportError(path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.classify(ctx, resp.StatusCode, raw, path)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}

	payload := unwrap(raw)
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, http.StatusBadGateway, "decode upstream response")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	target := c.baseURL + path
	if _, err := url.Parse(target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "invalid upstream path")
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if caller := CallerFrom(ctx); caller != nil && caller.Principal.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+caller.Principal.AccessToken)
	}
	return req, nil
}

// classify maps an upstream status onto the console error taxonomy. A 401 or
// 403 means the bearer token is no longer honoured, so the caller's session
// is cleared before the error is returned.
func (c *Client) classify(ctx context.Context, status int, raw []byte, path string) error {
	message := upstreamMessage(raw)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.expireSession(ctx, path, status)
		return appErrors.ErrAuthExpired
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if message != "" {
			return appErrors.Clone(appErrors.ErrValidation, message)
		}
		return appErrors.ErrValidation
	case status == http.StatusNotFound:
		return appErrors.ErrNotFound
	case status == http.StatusConflict:
		if message != "" {
			return appErrors.Clone(appErrors.ErrConflict, message)
		}
		return appErrors.ErrConflict
	case status >= http.StatusInternalServerError:
		c.logger.Warn("upstream failure", zap.String("path", path), zap.Int("status", status), zap.String("message", message))
		return appErrors.ErrUpstream
	default:
		if message != "" {
			return appErrors.New(appErrors.ErrUpstream.Code, status, message)
		}
		return appErrors.ErrUpstream
	}
}

func (c *Client) expireSession(ctx context.Context, path string, status int) {
	caller := CallerFrom(ctx)
	if caller == nil || c.sessions == nil {
		return
	}
	c.logger.Info("auth expired upstream, clearing session",
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("username", caller.Principal.Username),
	)
	if err := c.sessions.Clear(ctx, caller.SessionID); err != nil {
		c.logger.Error("clear expired session", zap.Error(err))
	}
}

func (c *Client) transportError(path string, err error) error {
	c.logger.Warn("upstream unreachable", zap.String("path", path), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrUnreachable.Code, http.StatusServiceUnavailable, appErrors.ErrUnreachable.Message)
}

func (c *Client) observe(method, path string, resp *http.Response, started time.Time, err error) {
	if c.observer == nil {
		return
	}
	status := 0
	if err == nil && resp != nil {
		status = resp.StatusCode
	}
	c.observer.ObserveUpstream(method, templatePath(path), status, time.Since(started))
}

// templatePath strips the query string and numeric path segments so metric
// label cardinality stays bounded.
func templatePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if isNumeric(segment) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// unwrap peels the {status,message,data} wrapper when present, otherwise
// returns the raw body unchanged.
func unwrap(raw []byte) json.RawMessage {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw
	}
	if env.Status == nil && env.Data == nil {
		return raw
	}
	if env.Data != nil {
		return env.Data
	}
	return raw
}

func upstreamMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if value, ok := generic[key].(string); ok && value != "" {
				return value
			}
		}
	}
	return ""
}
