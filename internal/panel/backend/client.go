// Package backend is the transport to the commerce backend's vendor REST API.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MKdir98/vendor-panel/internal/panel/observability"
)

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Options tune the client. Zero values select defaults.
type Options struct {
	HTTPClient HTTPClient
	Timeout    time.Duration
	RPS        float64
	Burst      int
	Metrics    *observability.Metrics
	Logger     *zap.Logger

	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration
}

// Client issues authenticated JSON requests against the backend. It is safe
// for concurrent use.
type Client struct {
	base    *url.URL
	client  HTTPClient
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// RequestOption mutates an outgoing request.
type RequestOption func(*http.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithIdempotencyKey tags mutating requests so retries are not applied twice.
func WithIdempotencyKey(key string) RequestOption {
	return WithHeader("Idempotency-Key", key)
}

// New builds a Client for baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics

	settings := gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if metrics != nil {
				metrics.BackendBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	}

	return &Client{
		base:    parsed,
		client:  opts.HTTPClient,
		limiter: rate.NewLimiter(limit, opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
		metrics: metrics,
		tracer:  observability.Tracer(),
	}, nil
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, op, token, endpoint string, query url.Values, out any, opts ...RequestOption) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return err
	}
	return c.roundTripJSON(ctx, op, req, out, opts)
}

// SendJSON encodes in (when non-nil) as the body of method and decodes the
// response into out (when non-nil).
func (c *Client) SendJSON(ctx context.Context, op, method, token, endpoint string, in, out any, opts ...RequestOption) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode %s payload: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, endpoint, body, token)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.roundTripJSON(ctx, op, req, out, opts)
}

// File is one part of a multipart upload.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// SendMultipart posts files under field as multipart/form-data and decodes
// the response into out.
func (c *Client) SendMultipart(ctx context.Context, op, token, endpoint, field string, files []File, out any, opts ...RequestOption) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := mw.CreatePart(header)
		if err != nil {
			return fmt.Errorf("backend: encode %s upload: %w", op, err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return fmt.Errorf("backend: encode %s upload: %w", op, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("backend: encode %s upload: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, &buf, token)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.roundTripJSON(ctx, op, req, out, opts)
}

// Stream issues a GET and hands back the raw body with its content type. The
// caller must close the body.
func (c *Client) Stream(ctx context.Context, op, token, endpoint string, opts ...RequestOption) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.do(ctx, op, req, opts)
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// URL resolves endpoint against the base URL.
func (c *Client) URL(endpoint string) string {
	return c.resolve(endpoint)
}

func (c *Client) roundTripJSON(ctx context.Context, op string, req *http.Request, out any, opts []RequestOption) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(ctx, op, req, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op string, req *http.Request, opts []RequestOption) (*http.Response, error) {
	for _, opt := range opts {
		opt(req)
	}

	ctx, span := c.tracer.Start(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.URL.Path),
	)
	req = req.WithContext(ctx)

	start := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.ObserveBackend(op, outcome, time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		outcome = "throttled"
		span.SetStatus(codes.Error, "rate limited")
		return nil, fmt.Errorf("backend: %s: wait for rate limiter: %w", op, err)
	}

	// Client errors and the caller's own cancellation are returned through
	// the result so they do not count against the breaker.
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return fmt.Errorf("backend: %s: %w", op, err), nil
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, errorFromResponse(resp)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return errorFromResponse(resp), nil
		}
		return resp, nil
	})
	if err == nil {
		if clientErr, ok := result.(error); ok {
			err = clientErr
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "breaker_open"
			err = fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			outcome = "canceled"
		case StatusOf(err) != 0:
			outcome = fmt.Sprintf("status_%d", StatusOf(err))
			span.SetAttributes(attribute.Int("http.response.status_code", StatusOf(err)))
		default:
			outcome = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.FromContext(ctx).Debug("backend request failed",
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil, err
	}

	resp := result.(*http.Response)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) resolve(endpoint string) string {
	if endpoint == "" {
		return c.base.String()
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return c.base.String() + strings.TrimPrefix(endpoint, "/")
	}
	return c.base.ResolveReference(ref).String()
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	out := &Error{Status: resp.StatusCode}
	var payload struct {
		Code    string `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		out.Code = payload.Code
		if out.Code == "" {
			out.Code = payload.Type
		}
		out.Message = payload.Message
		if out.Message == "" {
			out.Message = payload.Error
		}
		return out
	}
	if len(body) > 0 {
		out.Message = strings.TrimSpace(string(body))
	}
	return out
}
