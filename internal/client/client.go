// Package client is the SDK facade: one Client owns the Solana connection
// and the network and execution sub-clients.
package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/solana"
	"xolium-sdk/internal/transport"
	"xolium-sdk/internal/validation"
)

// Service names used in errors, logs and metrics.
const (
	ServiceNetwork   = "network"
	ServiceExecution = "execution"
	ServiceSolana    = "solana"
)

// Signer is the identity a client submits executions for.
// *solana.Keypair implements it.
type Signer interface {
	PublicKey() string
}

type options struct {
	logger     zerolog.Logger
	httpClient *http.Client
	rpc        solana.RPCClient
	wsConfig   *solana.WSClientConfig
	sleep      func(context.Context, time.Duration) error
}

// Option configures Client.
type Option func(*options)

// WithLogger sets the logger shared by all sub-clients.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the http.Client used for service APIs.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithRPCClient replaces the Solana RPC client built from the config.
func WithRPCClient(rpc solana.RPCClient) Option {
	return func(o *options) {
		o.rpc = rpc
	}
}

// WithWSConfig configures the lazily opened slot subscription socket.
func WithWSConfig(cfg solana.WSClientConfig) Option {
	return func(o *options) {
		o.wsConfig = &cfg
	}
}

// WithRetrySleeper replaces the backoff sleep of service API and RPC retries.
func WithRetrySleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// lifecycle is shared by a Client and its sub-clients.
type lifecycle struct {
	disposed atomic.Bool
}

func (l *lifecycle) assert() error {
	if l.disposed.Load() {
		return sdkerr.ExecutionDenied("Client is disposed", nil)
	}
	return nil
}

// Client is the SDK entry point.
type Client struct {
	cfg    domain.ClientConfig
	signer Signer
	rpc    solana.RPCClient
	logger zerolog.Logger
	life   *lifecycle

	Network   *NetworkClient
	Execution *ExecutionClient

	wsConfig *solana.WSClientConfig
	wsMu     sync.Mutex
	ws       *solana.WSClientImpl
}

// New validates cfg and builds a client. signer may be nil, in which case
// Execute accepts any on-curve signer key.
func New(cfg domain.ClientConfig, signer Signer, opts ...Option) (*Client, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validation.ClientConfig(cfg).InvalidInput("Invalid client configuration"); err != nil {
		return nil, err
	}

	rpc := o.rpc
	if rpc == nil {
		var rpcOpts []solana.ClientOption
		if o.sleep != nil {
			rpcOpts = append(rpcOpts, solana.WithSleeper(o.sleep))
		}
		conn, err := solana.NewConnection(solana.ConnectionConfig{
			RPCEndpoint: cfg.RPCEndpoint,
			Commitment:  cfg.Commitment,
			Retry:       cfg.Retry,
		}, rpcOpts...)
		if err != nil {
			return nil, err
		}
		rpc = conn
	}

	reqOpts := []transport.Option{transport.WithLogger(o.logger)}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, transport.WithHTTPClient(o.httpClient))
	}
	if o.sleep != nil {
		reqOpts = append(reqOpts, transport.WithSleeper(o.sleep))
	}

	network, err := transport.NewRequester(ServiceNetwork, cfg.APIs.Network, cfg.Retry, reqOpts...)
	if err != nil {
		return nil, err
	}
	execution, err := transport.NewRequester(ServiceExecution, cfg.APIs.Execution, cfg.Retry, reqOpts...)
	if err != nil {
		return nil, err
	}

	life := &lifecycle{}
	logger := o.logger.With().Str("component", "client").Logger()

	return &Client{
		cfg:       cfg,
		signer:    signer,
		rpc:       rpc,
		logger:    logger,
		life:      life,
		Network:   &NetworkClient{requester: network, life: life},
		Execution: &ExecutionClient{requester: execution, life: life, signer: signer, logger: logger},
		wsConfig:  o.wsConfig,
	}, nil
}

// Signer returns the bound signer, or nil.
func (c *Client) Signer() Signer {
	return c.signer
}

// RPC returns the Solana RPC client.
func (c *Client) RPC() solana.RPCClient {
	return c.rpc
}

// AssertNotDisposed fails with EXECUTION_DENIED once Close has been called.
func (c *Client) AssertNotDisposed() error {
	return c.life.assert()
}

// Close disposes the client. Later calls on it or its sub-clients fail.
// Close is idempotent.
func (c *Client) Close() error {
	if c.life.disposed.Swap(true) {
		return nil
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.ws != nil {
		err := c.ws.Close()
		c.ws = nil
		return err
	}
	return nil
}

// Slot returns the current slot from the Solana RPC node.
func (c *Client) Slot(ctx context.Context) (int64, error) {
	if err := c.life.assert(); err != nil {
		return 0, err
	}
	slot, err := c.rpc.GetSlot(ctx)
	if err != nil {
		return 0, rpcUnavailable("getSlot", err)
	}
	observability.UpdateHighestSlot(slot)
	return slot, nil
}

// SubscribeSlots streams slot updates, opening the WebSocket on first use.
func (c *Client) SubscribeSlots(ctx context.Context) (<-chan solana.SlotNotification, error) {
	if err := c.life.assert(); err != nil {
		return nil, err
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	// Close may have run between the check above and taking the lock.
	if err := c.life.assert(); err != nil {
		return nil, err
	}

	if c.ws == nil {
		endpoint := c.cfg.WSEndpoint
		if endpoint == "" {
			var err error
			if endpoint, err = solana.WSEndpointFor(c.cfg.RPCEndpoint); err != nil {
				return nil, err
			}
		}

		wsCfg := solana.DefaultWSConfig()
		if c.wsConfig != nil {
			wsCfg = *c.wsConfig
		}
		wsCfg.Logger = c.logger

		ws, err := solana.NewWSClient(ctx, endpoint, &wsCfg)
		if err != nil {
			return nil, rpcUnavailable("slotSubscribe", err)
		}
		c.ws = ws
	}

	ch, err := c.ws.SubscribeSlots(ctx)
	if err != nil {
		return nil, rpcUnavailable("slotSubscribe", err)
	}
	return ch, nil
}

func rpcUnavailable(method string, err error) error {
	return sdkerr.NetworkUnavailable("Solana RPC request failed", sdkerr.Details{
		"service": ServiceSolana,
		"method":  method,
		"error":   err.Error(),
	}).Wrap(err)
}
