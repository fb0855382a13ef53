package server

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/coderoom/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Sync frames carry whole
	// document snapshots, so this is generous.
	maxMessageSize = 512 * 1024
)

// Client wraps a single websocket connection (one room participant).
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn

	// SocketID is assigned at upgrade time and identifies this
	// participant on the wire for the connection's lifetime.
	SocketID string

	// Username and RoomID are set when the join request is processed.
	Username string
	RoomID   string

	// Send is the buffered channel of outbound messages, drained by
	// WritePump so there is exactly one writer per connection.
	Send chan protocol.Message

	// left marks a voluntary leave already handled, so the read pump
	// exiting afterwards does not produce a second peer-left notice.
	left bool
}

// ReadPump pumps messages from the websocket connection to the hub.
// It is the single reader for the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Warn("server: read error", "socket_id", c.SocketID, "error", err)
			}
			break
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("server: dropping undecodable frame", "socket_id", c.SocketID, "error", err)
			continue
		}

		c.Hub.Inbound <- Inbound{Client: c, Message: msg}
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps the connection alive with periodic pings. It is the single
// writer for the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := msg.Encode()
			if err != nil {
				slog.Warn("server: failed to encode frame", "type", msg.Type, "error", err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
