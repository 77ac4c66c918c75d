package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/transport"
)

// ErrClientClosed is returned by operations on a closed WSClientImpl.
var ErrClientClosed = errors.New("client closed")

// WSClientConfig tunes the slot subscription socket. Reconnect backoff
// doubles from ReconnectDelay up to MaxReconnectDelay without jitter.
type WSClientConfig struct {
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	ReadTimeout       time.Duration // reset on every received frame
	WriteTimeout      time.Duration
	SubscribeTimeout  time.Duration // wait for the subscription ID
	Logger            zerolog.Logger
}

// DefaultWSConfig returns the configuration used when none is given.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		SubscribeTimeout:  30 * time.Second,
		Logger:            zerolog.Nop(),
	}
}

// subscription is one slot stream kept across reconnects.
type subscription struct {
	ch chan SlotNotification
}

// subscribeResult is the node's answer to a subscribe request.
type subscribeResult struct {
	id  int64
	err error
}

// pendingSub is a subscribe request awaiting its confirmation.
type pendingSub struct {
	sub    *subscription
	result chan subscribeResult
	// replaces is the subscription ID being renewed after a reconnect.
	replaces    int64
	hasReplaces bool
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig
	logger   zerolog.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps the node's subscription ID to its stream
	subs   map[int64]*subscription
	subsMu sync.RWMutex

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]*pendingSub
	pendingSubsMu sync.Mutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.SubscribeTimeout <= 0 {
		cfg.SubscribeTimeout = DefaultWSConfig().SubscribeTimeout
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		logger:      cfg.Logger.With().Str("component", "solana_ws").Logger(),
		subs:        make(map[int64]*subscription),
		pendingSubs: make(map[uint64]*pendingSub),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes WebSocket connection.
func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeSlots subscribes to slot updates. The returned channel is closed
// by Close.
func (c *WSClientImpl) SubscribeSlots(ctx context.Context) (<-chan SlotNotification, error) {
	sub := &subscription{ch: make(chan SlotNotification, 1024)}
	if _, err := c.subscribe(ctx, &pendingSub{sub: sub}); err != nil {
		return nil, err
	}
	return sub.ch, nil
}

// subscribe sends slotSubscribe and waits for the subscription ID. The
// stream is registered by the read loop before any later message is read,
// so no notification can arrive for an unknown ID.
func (c *WSClientImpl) subscribe(ctx context.Context, p *pendingSub) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClientClosed
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "slotSubscribe",
	}

	p.result = make(chan subscribeResult, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = p
	c.pendingSubsMu.Unlock()

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		c.dropPending(reqID)
		return 0, fmt.Errorf("not connected")
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		c.dropPending(reqID)
		return 0, fmt.Errorf("write subscribe: %w", err)
	}

	timer := time.NewTimer(c.config.SubscribeTimeout)
	defer timer.Stop()

	select {
	case res, ok := <-p.result:
		if !ok {
			return 0, ErrClientClosed
		}
		return res.id, res.err
	case <-timer.C:
		c.dropPending(reqID)
		return 0, fmt.Errorf("subscription timeout after %s", c.config.SubscribeTimeout)
	case <-c.done:
		return 0, ErrClientClosed
	case <-ctx.Done():
		c.dropPending(reqID)
		return 0, ctx.Err()
	}
}

func (c *WSClientImpl) dropPending(reqID uint64) {
	c.pendingSubsMu.Lock()
	delete(c.pendingSubs, reqID)
	c.pendingSubsMu.Unlock()
}

// Close closes the WebSocket connection.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()

	// Readers are gone, so no sender can race with close.
	c.subsMu.Lock()
	for id, sub := range c.subs {
		close(sub.ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, p := range c.pendingSubs {
		close(p.result)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	return nil
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.logger.Warn().Err(err).Msg("websocket read failed")

			// Drop the failed connection so it is never read again.
			c.connMu.Lock()
			if c.conn == conn {
				c.conn.Close()
				c.conn = nil
			}
			c.connMu.Unlock()

			if !c.reconnecting.Swap(true) {
				c.wg.Add(1)
				go c.reconnect()
			}
			continue
		}

		c.handleMessage(message)
	}
}

// reconnect dials with exponential backoff until it succeeds or the client
// closes, then resubscribes.
func (c *WSClientImpl) reconnect() {
	defer c.wg.Done()
	defer c.reconnecting.Store(false)

	for attempt := 0; !c.closed.Load(); attempt++ {
		delay := c.reconnectDelay(attempt)
		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := c.connect(ctx)
		cancel()
		if err == nil {
			if c.closed.Load() {
				c.connMu.Lock()
				c.conn.Close()
				c.conn = nil
				c.connMu.Unlock()
				return
			}
			observability.RecordWSReconnect()
			c.logger.Info().Int("attempt", attempt+1).Msg("websocket reconnected")
			c.resubscribeAll()
			return
		}

		c.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("websocket reconnect failed")
	}
}

// reconnectDelay returns min(MaxReconnectDelay, ReconnectDelay * 2^attempt).
func (c *WSClientImpl) reconnectDelay(attempt int) time.Duration {
	ms, err := transport.ComputeDeterministicDelay(attempt,
		int(c.config.ReconnectDelay.Milliseconds()), int(c.config.MaxReconnectDelay.Milliseconds()))
	if err != nil {
		return c.config.MaxReconnectDelay
	}
	return time.Duration(ms) * time.Millisecond
}

// resubscribeAll moves every live stream to a fresh subscription ID.
func (c *WSClientImpl) resubscribeAll() {
	c.subsMu.RLock()
	existing := make(map[int64]*subscription, len(c.subs))
	for id, sub := range c.subs {
		existing[id] = sub
	}
	c.subsMu.RUnlock()

	for oldSubID, sub := range existing {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := c.subscribe(ctx, &pendingSub{sub: sub, replaces: oldSubID, hasReplaces: true})
		cancel()

		if err != nil {
			// Keep the old mapping; a later reconnect retries it.
			c.logger.Warn().Err(err).Int64("subscription", oldSubID).Msg("resubscribe failed")
		}
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Debug().Err(err).Msg("ignoring malformed message")
		return
	}

	switch {
	case msg.Method == "slotNotification" && msg.Params != nil:
		c.handleSlotNotification(msg.Params)
	case msg.ID != nil:
		c.handleSubscribeResponse(&msg)
	}
}

// handleSubscribeResponse handles subscription confirmation or rejection.
func (c *WSClientImpl) handleSubscribeResponse(msg *wsMessage) {
	c.pendingSubsMu.Lock()
	p, ok := c.pendingSubs[*msg.ID]
	if ok {
		delete(c.pendingSubs, *msg.ID)
	}
	c.pendingSubsMu.Unlock()

	if !ok {
		return
	}

	var res subscribeResult
	switch {
	case msg.Error != nil:
		res.err = msg.Error
	default:
		if err := json.Unmarshal(msg.Result, &res.id); err != nil {
			res.err = fmt.Errorf("decode subscription id: %w", err)
		}
	}

	if res.err == nil {
		c.subsMu.Lock()
		if p.hasReplaces {
			delete(c.subs, p.replaces)
		}
		c.subs[res.id] = p.sub
		c.subsMu.Unlock()
	}

	p.result <- res
}

// handleSlotNotification dispatches a slot update to its subscriber.
func (c *WSClientImpl) handleSlotNotification(params *wsNotificationParams) {
	var notif SlotNotification
	if err := json.Unmarshal(params.Result, &notif); err != nil {
		c.logger.Debug().Err(err).Msg("ignoring malformed slot notification")
		return
	}
	observability.UpdateHighestSlot(notif.Slot)

	c.subsMu.RLock()
	sub, ok := c.subs[params.Subscription]
	c.subsMu.RUnlock()

	if ok {
		// Block until we can send - never drop events
		select {
		case sub.ch <- notif:
		case <-c.done:
		}
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// A dead connection surfaces in readLoop.
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

// wsMessage covers both responses (ID set) and notifications (Method set).
type wsMessage struct {
	JSONRPC string                `json:"jsonrpc"`
	ID      *uint64               `json:"id,omitempty"`
	Result  json.RawMessage       `json:"result,omitempty"`
	Error   *RPCError             `json:"error,omitempty"`
	Method  string                `json:"method,omitempty"`
	Params  *wsNotificationParams `json:"params,omitempty"`
}

type wsNotificationParams struct {
	Subscription int64           `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}
