package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/sdkerr"
)

// RequestIDHeader carries a fresh UUID on every attempt.
const RequestIDHeader = "X-Request-Id"

// Request is one logical API call. Route is a route name from the API
// config, not a path.
type Request struct {
	Method string
	Route  string
	Body   any
}

// Requester performs calls against one service API.
type Requester struct {
	service string
	api     domain.APIConfig
	retry   domain.RetryPolicy
	client  *http.Client
	logger  zerolog.Logger
	sleep   func(context.Context, time.Duration) error
}

// Option configures Requester.
type Option func(*Requester)

// WithHTTPClient sets a custom http.Client. Its Timeout is overridden by the
// API's timeoutMs.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Requester) {
		r.client = client
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Requester) {
		r.logger = logger
	}
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(r *Requester) {
		r.sleep = sleep
	}
}

// NewRequester creates a Requester for service. The retry policy is
// validated here so that Do never runs with an invalid policy.
func NewRequester(service string, api domain.APIConfig, retry domain.RetryPolicy, opts ...Option) (*Requester, error) {
	policy, err := ParseRetryPolicy(retry)
	if err != nil {
		return nil, err
	}

	r := &Requester{
		service: service,
		api:     api,
		retry:   policy,
		client:  &http.Client{},
		logger:  zerolog.Nop(),
		sleep:   Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}

	client := *r.client
	client.Timeout = time.Duration(api.TimeoutMs) * time.Millisecond
	r.client = &client
	r.logger = r.logger.With().Str("service", service).Logger()
	return r, nil
}

// Service returns the service name used in errors and metrics.
func (r *Requester) Service() string {
	return r.service
}

// failure describes one failed attempt.
type failure struct {
	name    string
	message string
	status  int // 0 when no response was received
	url     string
	method  string
	err     error
}

func (f *failure) detail() map[string]any {
	d := map[string]any{
		"name":    f.name,
		"message": f.message,
		"url":     f.url,
		"method":  f.method,
	}
	if f.status != 0 {
		d["status"] = f.status
	}
	return d
}

// Do performs req and returns the body of the first 2xx response.
//
// A response with a status is retried only when the status is listed in
// retryableHttpStatusCodes. A failure without a status (DNS, timeout,
// connection reset) is always retried. The final or a non-retryable failure
// is returned as NETWORK_UNAVAILABLE. Cancellation of ctx aborts at once.
func (r *Requester) Do(ctx context.Context, req Request) ([]byte, error) {
	path, ok := r.api.Routes[req.Route]
	if !ok {
		return nil, sdkerr.InvalidInputDetails("unknown route", sdkerr.Details{
			"service": r.service,
			"route":   req.Route,
		})
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, sdkerr.InvalidInputDetails("request body is not serializable", sdkerr.Details{
				"service": r.service,
				"route":   req.Route,
				"error":   err.Error(),
			})
		}
	}

	target := joinURL(r.api.BaseURL, path)
	start := time.Now()

	for attempt := 0; attempt < r.retry.MaxAttempts; attempt++ {
		data, f := r.attempt(ctx, method, target, body)
		if f == nil {
			observability.RecordAPIRequest(r.service, req.Route, "ok", time.Since(start).Seconds())
			return data, nil
		}

		if ctx.Err() != nil {
			observability.RecordAPIRequest(r.service, req.Route, "cancelled", time.Since(start).Seconds())
			return nil, r.unavailable("Network request cancelled", req.Route, attempt, f).Wrap(ctx.Err())
		}

		retryable := f.status == 0 || r.retry.IsRetryableStatus(f.status)
		if !retryable || attempt == r.retry.MaxAttempts-1 {
			observability.RecordAPIRequest(r.service, req.Route, "failed", time.Since(start).Seconds())
			return nil, r.unavailable("Network request failed", req.Route, attempt, f).Wrap(f.err)
		}

		delayMs, err := ComputeDeterministicDelay(attempt, r.retry.BaseDelayMs, r.retry.MaxDelayMs)
		if err != nil {
			return nil, err
		}

		r.logger.Warn().
			Str("route", req.Route).
			Int("attempt", attempt).
			Int("status", f.status).
			Int("delay_ms", delayMs).
			Str("error", f.message).
			Msg("retrying request")
		observability.RecordAPIRetry(r.service, req.Route)

		if err := r.sleep(ctx, time.Duration(delayMs)*time.Millisecond); err != nil {
			observability.RecordAPIRequest(r.service, req.Route, "cancelled", time.Since(start).Seconds())
			return nil, r.unavailable("Network request cancelled", req.Route, attempt, f).Wrap(err)
		}
	}

	// Unreachable: MaxAttempts >= 1 is enforced by NewRequester.
	return nil, sdkerr.NetworkUnavailable("Network request failed", sdkerr.Details{
		"service": r.service,
		"route":   req.Route,
	})
}

func (r *Requester) attempt(ctx context.Context, method, target string, body []byte) ([]byte, *failure) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &failure{name: "RequestError", message: err.Error(), url: target, method: method, err: err}
	}
	for k, v := range r.api.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, &failure{name: "TransportError", message: err.Error(), url: target, method: method, err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &failure{name: "TransportError", message: fmt.Sprintf("read response: %v", err), url: target, method: method, err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		return nil, &failure{name: "HTTPError", message: err.Error(), status: resp.StatusCode, url: target, method: method, err: err}
	}
	return data, nil
}

func (r *Requester) unavailable(message, route string, attempt int, f *failure) *sdkerr.Error {
	return sdkerr.NetworkUnavailable(message, sdkerr.Details{
		"service":     r.service,
		"route":       route,
		"attempt":     attempt,
		"maxAttempts": r.retry.MaxAttempts,
		"http":        f.detail(),
	})
}

func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
