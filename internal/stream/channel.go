package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
)

// Conn is the transport beneath a Channel. gorilla/websocket's Conn
// satisfies it; tests inject fakes to drive the state machine without
// a live socket.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer establishes a Conn to the streaming endpoint. The auth token
// is supplied once here and is immutable for the channel's lifetime.
type Dialer func(ctx context.Context, endpoint, authToken string) (Conn, error)

// WebsocketDialer returns the production dialer with a bounded
// handshake timeout.
func WebsocketDialer(timeout time.Duration) Dialer {
	return func(ctx context.Context, endpoint, authToken string) (Conn, error) {
		dialer := websocket.Dialer{HandshakeTimeout: timeout}
		header := http.Header{}
		if authToken != "" {
			header.Set("Authorization", "Bearer "+authToken)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		conn, _, err := dialer.DialContext(ctx, endpoint, header)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Channel manages one persistent bidirectional connection to the
// analysis service. It owns its State; nothing else mutates it.
// Inbound results are delivered to the registered handler in the order
// the transport received them.
type Channel struct {
	dial       Dialer
	normalizer *detection.Normalizer

	mu       sync.Mutex
	state    State
	conn     Conn
	onResult func(detection.LiveFrameResult)
	onState  func(State)
}

func NewChannel(dial Dialer, normalizer *detection.Normalizer) *Channel {
	return &Channel{
		dial:       dial,
		normalizer: normalizer,
		state:      StateIdle,
	}
}

// OnResult registers the single active handler for inbound frame
// results. A later call replaces the previous handler.
func (c *Channel) OnResult(fn func(detection.LiveFrameResult)) {
	c.mu.Lock()
	c.onResult = fn
	c.mu.Unlock()
}

// OnStateChange registers a callback invoked exactly once per state
// transition.
func (c *Channel) OnStateChange(fn func(State)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect establishes the transport and moves the channel to
// Streaming. The protocol is send-on-open: no application-level
// handshake is required after the transport opens. On failure the
// channel lands in Failed; reconnecting is the caller's decision.
func (c *Channel) Connect(ctx context.Context, endpoint, authToken string) error {
	// Claim the channel and move to Connecting in one critical section
	// so a concurrent Connect cannot also pass the idle check.
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("connect: channel is %s, want idle", state)
	}
	c.state = StateConnecting
	notify := c.onState
	c.mu.Unlock()
	if notify != nil {
		notify(StateConnecting)
	}

	conn, err := c.dial(ctx, endpoint, authToken)
	if err != nil {
		c.setState(StateFailed)
		return fmt.Errorf("connect %s: %w", endpoint, err)
	}

	c.mu.Lock()
	if c.state != StateConnecting {
		// Closed while the dial was in flight.
		state := c.state
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("connect: channel %s during dial", state)
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateOpen)
	c.setState(StateStreaming)

	go c.readLoop(conn)
	return nil
}

// Send transmits one encoded frame. Valid only while Streaming; in any
// other state it is a silent no-op, matching the scheduler's
// backpressure contract.
func (c *Channel) Send(frame CaptureFrame) error {
	c.mu.Lock()
	if c.state != StateStreaming {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	c.mu.Unlock()

	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
		c.fail()
		return fmt.Errorf("send frame %d: %w", frame.Seq, err)
	}
	return nil
}

// Close tears the channel down deterministically from any state and is
// idempotent: a second call finds Closed and does nothing.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.setState(StateClosing)
	if conn != nil {
		conn.Close()
	}
	c.setState(StateClosed)
	return nil
}

func (c *Channel) readLoop(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			terminal := c.state == StateClosing || c.state == StateClosed
			c.mu.Unlock()
			if !terminal {
				c.fail()
			}
			return
		}

		var raw detection.RawLiveFrame
		if err := json.Unmarshal(data, &raw); err != nil {
			// A malformed message must never crash the stream.
			log.Printf("stream: dropping malformed message: %v", err)
			continue
		}

		result := c.normalizer.NormalizeLiveFrame(raw)

		c.mu.Lock()
		handler := c.onResult
		c.mu.Unlock()
		if handler != nil {
			handler(result)
		}
	}
}

func (c *Channel) fail() {
	c.mu.Lock()
	if c.state == StateClosing || c.state == StateClosed || c.state == StateFailed {
		c.mu.Unlock()
		return
	}
	c.state = StateFailed
	conn := c.conn
	c.conn = nil
	fn := c.onState
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if fn != nil {
		fn(StateFailed)
	}
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	// Teardown states win: once Closing, Closed or Failed is reached,
	// only the Closing → Closed step may still happen.
	if terminal(c.state) && !(s == StateClosing || s == StateClosed) {
		c.mu.Unlock()
		return
	}
	c.state = s
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func terminal(s State) bool {
	return s == StateClosing || s == StateClosed || s == StateFailed
}
