package transport

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/coderoom/internal/dns"
	"github.com/BioHazard786/coderoom/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // room for a full document snapshot
)

// Client is the owned transport handle for one room session: a websocket
// connection carrying msgpack-encoded protocol frames. It is created per
// session and passed into the session controller; there is no ambient
// shared connection.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	incoming  chan protocol.Message
	outgoing  chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	readErr error
}

// NewClient creates a transport handle for the given websocket URL. The
// connection is not opened until Connect.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		incoming:  make(chan protocol.Message, 16),
		outgoing:  make(chan protocol.Message, 16),
		done:      make(chan struct{}),
	}
}

// Connect establishes the websocket connection and starts the read and
// write pumps. A failure here is the handshake-failure case: the caller
// must treat it as terminal and not retry automatically.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Fresh dialer with DNS fallback across public resolvers; the
	// handle owns its dialer, nothing ambient is mutated.
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
		NetDial: func(network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}

			resolvedIP, err := dns.Lookup(host)
			if err != nil {
				return nil, fmt.Errorf("dns lookup failed: %w", err)
			}

			return net.Dial(network, net.JoinHostPort(resolvedIP, port))
		},
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn

	c.conn.SetReadLimit(maxMessageSize)

	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

// readPump reads frames from the connection, decodes them, and delivers
// them in arrival order on the incoming channel. When the connection
// drops, the channel is closed; Err reports whether the drop was a fault.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.recordReadErr(err)
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("transport: dropping undecodable frame", "error", err)
			continue
		}

		c.incoming <- msg
	}
}

// writePump writes outbound frames and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			data, err := msg.Encode()
			if err != nil {
				slog.Warn("transport: failed to encode frame", "type", msg.Type, "error", err)
				continue
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// The leave notice is queued immediately before Close;
			// flush the queue before the close handshake.
			c.drainOutgoing()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drainOutgoing writes every frame still queued at teardown time, in
// queue order.
func (c *Client) drainOutgoing() {
	for {
		select {
		case msg := <-c.outgoing:
			data, err := msg.Encode()
			if err != nil {
				slog.Warn("transport: failed to encode frame", "type", msg.Type, "error", err)
				continue
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		default:
			return
		}
	}
}

// Send queues a message for delivery. Safe to call after Close; the
// message is silently dropped once the handle is released.
func (c *Client) Send(msg protocol.Message) {
	select {
	case c.outgoing <- msg:
	case <-c.done:
	}
}

// Incoming returns the channel of received messages. The channel closes
// when the connection is gone, whether by Close or by a transport fault.
func (c *Client) Incoming() <-chan protocol.Message {
	return c.incoming
}

// Close releases the transport handle. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Err reports the read error that ended the connection, or nil when the
// connection ended by a deliberate Close. Valid once Incoming is closed.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

func (c *Client) recordReadErr(err error) {
	select {
	case <-c.done:
		// Deliberate close; the read error is just the connection
		// being torn down underneath the pump.
		return
	default:
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}

	c.mu.Lock()
	c.readErr = err
	c.mu.Unlock()
}
