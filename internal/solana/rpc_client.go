package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/transport"
)

// DefaultTimeout bounds a single JSON-RPC HTTP round trip.
const DefaultTimeout = 30 * time.Second

// DefaultRetryPolicy is used when no policy is configured.
func DefaultRetryPolicy() domain.RetryPolicy {
	return domain.RetryPolicy{
		MaxAttempts:              4,
		BaseDelayMs:              1000,
		MaxDelayMs:               10_000,
		RetryableHTTPStatusCodes: []int{429, 500, 502, 503, 504},
	}
}

// HTTPClient implements RPCClient over HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint   string
	commitment domain.Commitment
	client     *http.Client
	retry      domain.RetryPolicy
	sleep      func(context.Context, time.Duration) error
	requestID  atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRetryPolicy sets the retry policy shared with the service APIs.
func WithRetryPolicy(p domain.RetryPolicy) ClientOption {
	return func(c *HTTPClient) {
		c.retry = p
	}
}

// WithSleeper replaces the backoff sleep, mainly for tests.
func WithSleeper(sleep func(context.Context, time.Duration) error) ClientOption {
	return func(c *HTTPClient) {
		c.sleep = sleep
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithCommitment sets the commitment sent with commitment-aware reads.
func WithCommitment(commitment domain.Commitment) ClientOption {
	return func(c *HTTPClient) {
		c.commitment = commitment
	}
}

// NewHTTPClient creates a Solana RPC client for endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   endpoint,
		commitment: domain.CommitmentConfirmed,
		client:     &http.Client{Timeout: DefaultTimeout},
		retry:      DefaultRetryPolicy(),
		sleep:      transport.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}
	return c
}

// Endpoint returns the RPC URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Commitment returns the read commitment.
func (c *HTTPClient) Commitment() domain.Commitment {
	return c.commitment
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// HTTPStatusError is a non-200 answer from the RPC endpoint.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// errRetryable marks a failure the retry loop may repeat.
type errRetryable struct{ err error }

func (e errRetryable) Error() string { return e.err.Error() }
func (e errRetryable) Unwrap() error { return e.err }

// call performs a JSON-RPC call, retrying transport failures and
// retryable HTTP statuses with the client's deterministic backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []any, result any) error {
	start := time.Now()
	defer func() {
		observability.RecordRPCLatency(method, time.Since(start).Seconds())
	}()

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delayMs, err := transport.ComputeDeterministicDelay(attempt-1, c.retry.BaseDelayMs, c.retry.MaxDelayMs)
			if err != nil {
				return err
			}
			if err := c.sleep(ctx, time.Duration(delayMs)*time.Millisecond); err != nil {
				return err
			}
		}

		raw, err := c.roundTrip(ctx, body)
		if err == nil {
			return decodeResult(raw, result)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var retryable errRetryable
		if !errors.As(err, &retryable) {
			return err
		}
		lastErr = retryable.err
	}

	return fmt.Errorf("%s failed after %d attempts: %w", method, c.retry.MaxAttempts, lastErr)
}

// roundTrip posts body once and returns the raw JSON-RPC response.
func (c *HTTPClient) roundTrip(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errRetryable{fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errRetryable{fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &HTTPStatusError{Status: resp.StatusCode, Body: string(data)}
		if c.retry.IsRetryableStatus(resp.StatusCode) {
			return nil, errRetryable{statusErr}
		}
		return nil, statusErr
	}
	return data, nil
}

// decodeResult unpacks a JSON-RPC envelope into result. Node errors are
// returned as *RPCError and never retried.
func decodeResult(raw []byte, result any) error {
	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && resp.Result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) commitmentConfig() map[string]any {
	return map[string]any{"commitment": string(c.commitment)}
}

// GetHealth returns nil when the node answers "ok".
func (c *HTTPClient) GetHealth(ctx context.Context) error {
	var result string
	if err := c.call(ctx, "getHealth", nil, &result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("node unhealthy: %q", result)
	}
	return nil
}

// GetSlot retrieves the current slot.
func (c *HTTPClient) GetSlot(ctx context.Context) (int64, error) {
	var result int64
	if err := c.call(ctx, "getSlot", []any{c.commitmentConfig()}, &result); err != nil {
		return 0, err
	}
	return result, nil
}

// GetVersion retrieves the node software version.
func (c *HTTPClient) GetVersion(ctx context.Context) (*Version, error) {
	var result Version
	if err := c.call(ctx, "getVersion", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBalance retrieves the lamport balance of pubkey.
func (c *HTTPClient) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []any{pubkey, c.commitmentConfig()}, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

// GetAccountInfo retrieves account info by public key.
// Returns nil if account not found.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	params := []any{
		pubkey,
		map[string]any{
			"encoding":   "base64",
			"commitment": string(c.commitment),
		},
	}

	var result getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil {
		return nil, nil
	}

	info := &AccountInfo{
		Lamports:   result.Value.Lamports,
		Owner:      result.Value.Owner,
		Executable: result.Value.Executable,
		RentEpoch:  result.Value.RentEpoch,
	}

	if len(result.Value.Data) >= 1 {
		info.Data = result.Value.Data[0]
	}

	return info, nil
}

type getAccountInfoResult struct {
	Value *getAccountInfoValue `json:"value"`
}

type getAccountInfoValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [base64_data, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
}
