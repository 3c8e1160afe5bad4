package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sunmobiir/meetsync/pkg/wire"
)

// Client errors.
var (
	// ErrNotConnected is returned when writing without a live connection.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrNotSubscribed is returned by Publish before the channel
	// subscription is acknowledged.
	ErrNotSubscribed = errors.New("transport: not subscribed")

	// errFatal marks server errors that must not be retried.
	errFatal = errors.New("transport: fatal server error")
)

// Client owns one logical connection to the signaling server for the
// lifetime of the client session. Construct with New, drive with
// Start/Stop. Start is idempotent; a started client supervises its own
// reconnects until Stop or a fatal server error.
type Client struct {
	config   *Config
	handlers Handlers
	logger   *slog.Logger
	metrics  *metricsSet

	mu      sync.Mutex // guards conn writes, state, and lifecycle flags
	conn    *websocket.Conn
	state   State
	started bool
	done    chan struct{}

	wg sync.WaitGroup
}

// New creates a client. The logger may be nil; slog.Default() is used in
// that case. Handlers may be the zero value for callers that only poll
// State().
func New(config *Config, handlers Handlers, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:   config.withDefaults(),
		handlers: handlers,
		logger:   logger.With("channel", config.Channel),
		metrics:  getMetrics(),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.metrics.state.Set(float64(s))
}

// Start begins connecting. Calling Start on a running client is a no-op.
// The supervisor goroutine exits when ctx is cancelled, Stop is called,
// or the server reports a fatal error.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx, done)
}

// Stop tears the connection down and stops reconnecting. It blocks until
// the supervisor goroutine has exited.
func (c *Client) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	close(c.done)
	if c.conn != nil {
		ct, cm := wire.NewClose(wire.CloseGoingAway, "client stopped")
		frame := wire.NewFrame(wire.FrameControl, wire.EncodeControl(ct, cm))
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		_ = c.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
		c.conn.Close()
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.setState(StateDisconnected)
}

// Publish sends a payload upstream on the subscribed channel. Used by the
// optimistic chat publish hook.
func (c *Client) Publish(payload []byte) error {
	if c.State() != StateSubscribed {
		return ErrNotSubscribed
	}
	return c.writeFrame(wire.NewFrame(wire.FramePublication, payload))
}

// stopping reports whether shutdown has been requested.
func stopping(ctx context.Context, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// run is the connection supervisor: connect, pump until the connection
// ends, back off, repeat.
func (c *Client) run(ctx context.Context, done <-chan struct{}) {
	defer c.wg.Done()

	backoff := c.config.MinBackoff
	for attempt := 0; ; attempt++ {
		if stopping(ctx, done) {
			return
		}

		c.setState(StateConnecting)
		c.handlers.connecting()
		if attempt > 0 {
			c.metrics.reconnects.Inc()
		}

		established, err := c.runConnection(ctx, done)
		c.setState(StateDisconnected)

		if err != nil && errors.Is(err, errFatal) {
			c.logger.Error("not retrying after fatal server error", "error", err)
			return
		}
		if stopping(ctx, done) {
			return
		}
		if established {
			backoff = c.config.MinBackoff
		}

		delay := backoff + time.Duration(rand.Int63n(int64(backoff/2)+1))
		c.logger.Info("reconnecting", "attempt", attempt+1, "delay", delay)
		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-done:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// runConnection dials, performs the handshake and subscription, then
// pumps frames until the connection ends. It reports whether the
// subscription was established, which resets the backoff.
func (c *Client) runConnection(ctx context.Context, done <-chan struct{}) (established bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.config.Endpoint, nil)
	if err != nil {
		err = fmt.Errorf("dial %s: %w", c.config.Endpoint, err)
		c.handlers.error(err)
		return false, err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()
	}()

	// Auth handshake.
	req := &wire.ConnectRequest{
		Version: wire.CurrentVersion,
		Token:   c.config.Token,
		Client:  c.config.ClientName,
	}
	if err := c.writeFrame(wire.NewFrame(wire.FrameConnect, wire.EncodeConnectRequest(req))); err != nil {
		c.handlers.error(fmt.Errorf("connect write: %w", err))
		return false, err
	}

	frame, err := c.readHandshakeFrame(conn)
	if err != nil {
		c.handlers.error(fmt.Errorf("connect read: %w", err))
		return false, err
	}
	ack, err := c.expectConnected(frame)
	if err != nil {
		c.handlers.error(err)
		return false, err
	}
	c.setState(StateConnected)
	c.handlers.connected(ack.SessionID)
	c.logger.Info("connected", "session_id", ack.SessionID)

	// Channel subscription.
	sub := &wire.SubscribeRequest{Channel: c.config.Channel}
	if err := c.writeFrame(wire.NewFrame(wire.FrameSubscribe, wire.EncodeSubscribeRequest(sub))); err != nil {
		c.handlers.error(fmt.Errorf("subscribe write: %w", err))
		return false, err
	}

	frame, err = c.readHandshakeFrame(conn)
	if err != nil {
		c.handlers.error(fmt.Errorf("subscribe read: %w", err))
		return false, err
	}
	subAck, err := c.expectSubscribed(frame)
	if err != nil {
		c.handlers.error(err)
		return false, err
	}
	c.setState(StateSubscribed)
	c.handlers.subscribed(subAck.Channel)
	c.logger.Info("subscribed", "channel", subAck.Channel)

	// Heartbeat.
	pingDone := make(chan struct{})
	defer close(pingDone)
	go c.pingLoop(pingDone, done)

	return true, c.readLoop(ctx, done, conn)
}

// expectConnected interprets the server's response to a ConnectRequest.
func (c *Client) expectConnected(frame *wire.Frame) (*wire.ConnectAck, error) {
	switch frame.Type {
	case wire.FrameConnected:
		return wire.DecodeConnectAck(frame.Payload)
	case wire.FrameError:
		return nil, c.serverError(frame.Payload)
	default:
		return nil, fmt.Errorf("transport: expected Connected, got %v", frame.Type)
	}
}

// expectSubscribed interprets the server's response to a SubscribeRequest.
func (c *Client) expectSubscribed(frame *wire.Frame) (*wire.SubscribeAck, error) {
	switch frame.Type {
	case wire.FrameSubscribed:
		return wire.DecodeSubscribeAck(frame.Payload)
	case wire.FrameError:
		return nil, c.serverError(frame.Payload)
	default:
		return nil, fmt.Errorf("transport: expected Subscribed, got %v", frame.Type)
	}
}

// serverError decodes an Error frame payload, marking fatal ones so the
// supervisor stops retrying.
func (c *Client) serverError(payload []byte) error {
	em, err := wire.DecodeErrorMessage(payload)
	if err != nil {
		return fmt.Errorf("transport: malformed error frame: %w", err)
	}
	if em.Fatal {
		return fmt.Errorf("%w: %s", errFatal, em.Error())
	}
	return em
}

// readHandshakeFrame reads one frame under the handshake timeout.
func (c *Client) readHandshakeFrame(conn *websocket.Conn) (*wire.Frame, error) {
	conn.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.metrics.bytesReceived.Add(float64(len(msg)))
	return wire.DecodeFrame(msg)
}

// readLoop pumps frames until the connection ends. Frame decode failures
// drop the frame and keep the session alive; only transport-level read
// errors and server closes end the loop.
func (c *Client) readLoop(ctx context.Context, done <-chan struct{}, conn *websocket.Conn) error {
	for {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if stopping(ctx, done) {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			c.handlers.disconnected(err.Error())
			return err
		}
		c.metrics.bytesReceived.Add(float64(len(msg)))

		frame, err := wire.DecodeFrame(msg)
		if err != nil {
			c.metrics.frameErrors.Inc()
			c.logger.Error("frame decode error", "error", err)
			continue
		}
		c.metrics.framesReceived.WithLabelValues(frame.Type.String()).Inc()

		switch frame.Type {
		case wire.FramePublication:
			c.handlers.publication(frame.Payload)

		case wire.FrameControl:
			closed, reason := c.handleControl(frame.Payload)
			if closed {
				c.handlers.disconnected(reason)
				return nil
			}

		case wire.FrameError:
			err := c.serverError(frame.Payload)
			c.handlers.error(err)
			if errors.Is(err, errFatal) {
				c.handlers.disconnected(err.Error())
				return err
			}

		default:
			c.logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}

// handleControl processes one control message. It reports whether the
// server closed the session, with the close reason.
func (c *Client) handleControl(payload []byte) (closed bool, reason string) {
	ct, data, err := wire.DecodeControl(payload)
	if err != nil {
		c.logger.Error("control decode error", "error", err)
		return false, ""
	}

	switch ct {
	case wire.ControlPing:
		if pp, ok := data.(*wire.PingPong); ok {
			pct, pong := wire.NewPong(pp.Timestamp)
			if err := c.writeFrame(wire.NewFrame(wire.FrameControl, wire.EncodeControl(pct, pong))); err != nil {
				c.logger.Error("pong write error", "error", err)
			}
		}

	case wire.ControlPong:
		c.logger.Debug("received pong")

	case wire.ControlClose:
		if cm, ok := data.(*wire.CloseMessage); ok {
			c.logger.Info("server closing", "reason", cm.Reason, "message", cm.Message)
			return true, cm.Reason.String()
		}
		return true, wire.CloseNormal.String()
	}
	return false, ""
}

// pingLoop sends heartbeat pings until the connection or session ends.
func (c *Client) pingLoop(connDone, done <-chan struct{}) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ct, ping := wire.NewPing(uint64(time.Now().UnixMilli()))
			if err := c.writeFrame(wire.NewFrame(wire.FrameControl, wire.EncodeControl(ct, ping))); err != nil {
				// Write failure means the read loop is about to fail
				// too; it owns the teardown.
				return
			}

		case <-connDone:
			return
		case <-done:
			return
		}
	}
}

// writeFrame encodes and sends one frame under the write timeout.
func (c *Client) writeFrame(f *wire.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	data := f.Encode()
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	c.metrics.bytesSent.Add(float64(len(data)))
	return nil
}
