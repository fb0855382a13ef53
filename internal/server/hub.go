package server

import (
	"context"
	"log/slog"

	"github.com/BioHazard786/coderoom/internal/protocol"
)

// Inbound pairs a decoded message with the connection that sent it.
type Inbound struct {
	Client  *Client
	Message protocol.Message
}

// Hub is the central brain of the room server. A single Run goroutine
// owns all room state, so no locking is needed anywhere in the room
// bookkeeping.
type Hub struct {
	// Rooms maps room identifiers to Room instances.
	Rooms map[string]*Room

	// Register is the channel for newly upgraded connections.
	Register chan *Client

	// Unregister is the channel for connections whose read pump exited.
	Unregister chan *Client

	// Inbound carries every decoded message from every connection.
	Inbound chan Inbound
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]*Room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan Inbound),
	}
}

// Run starts the hub's main processing loop. It exits when the context
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			// Not in a room yet; they have to send a join first.
			slog.Info("client registered", "socket_id", client.SocketID)

		case client := <-h.Unregister:
			slog.Info("client unregistered", "socket_id", client.SocketID)

			if !client.left {
				h.removeFromRoom(client, protocol.ReasonDisconnected)
			}
			close(client.Send)

		case in := <-h.Inbound:
			h.route(in.Client, in.Message)
		}
	}
}

// route is the dispatch table for client requests.
func (h *Hub) route(client *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeJoin:
		h.handleJoin(client, msg)
	case protocol.TypeSync:
		h.handleSync(client, msg)
	case protocol.TypeCodeChange:
		h.handleCodeChange(client, msg)
	case protocol.TypeLeave:
		h.handleLeave(client)
	default:
		slog.Debug("unknown message type", "type", msg.Type, "socket_id", client.SocketID)
	}
}

// handleJoin puts the client into the named room, creating it on first
// use, and broadcasts the full authoritative roster to every member.
// Carrying the whole roster instead of a delta is what lets clients
// self-heal when individual join events are missed.
func (h *Hub) handleJoin(client *Client, msg protocol.Message) {
	var payload protocol.JoinPayload
	if err := msg.DecodePayload(&payload); err != nil || payload.RoomID == "" || payload.Username == "" {
		h.sendError(client, "invalid join request")
		return
	}

	if client.RoomID != "" {
		h.sendError(client, "already in a room")
		return
	}

	client.Username = payload.Username
	client.RoomID = payload.RoomID

	room, ok := h.Rooms[payload.RoomID]
	if !ok {
		room = &Room{ID: payload.RoomID}
		h.Rooms[payload.RoomID] = room
		slog.Info("room created", "room", payload.RoomID)
	}
	room.Members = append(room.Members, client)

	slog.Info("client joined room", "room", room.ID, "username", client.Username, "socket_id", client.SocketID)

	joined, err := protocol.NewMessage(protocol.TypeJoined, protocol.JoinedPayload{
		Clients:  room.Roster(),
		Username: client.Username,
		SocketID: client.SocketID,
	})
	if err != nil {
		slog.Error("failed to encode joined broadcast", "error", err)
		return
	}

	for _, member := range room.Members {
		member.Send <- joined
	}
}

// handleSync relays a document catch-up to the one member it names.
// The frame is forwarded untouched; the hub never broadcasts it.
func (h *Hub) handleSync(client *Client, msg protocol.Message) {
	room, ok := h.Rooms[client.RoomID]
	if !ok {
		h.sendError(client, "you must join a room first")
		return
	}

	var payload protocol.SyncPayload
	if err := msg.DecodePayload(&payload); err != nil {
		h.sendError(client, "invalid sync request")
		return
	}

	target := room.FindBySocketID(payload.SocketID)
	if target == nil {
		// Target already gone; stale syncs are dropped, not errors.
		slog.Debug("sync target not in room", "room", room.ID, "target", payload.SocketID)
		return
	}

	target.Send <- msg
}

// handleCodeChange relays a live edit to every other room member. The
// sender is excluded; its surface already shows the edit.
func (h *Hub) handleCodeChange(client *Client, msg protocol.Message) {
	room, ok := h.Rooms[client.RoomID]
	if !ok {
		h.sendError(client, "you must join a room first")
		return
	}

	for _, member := range room.Members {
		if member == client {
			continue
		}
		member.Send <- msg
	}
}

// handleLeave processes a voluntary leave notice. The read pump will
// still exit afterwards, but the left flag keeps unregistration from
// announcing the departure twice.
func (h *Hub) handleLeave(client *Client) {
	client.left = true
	h.removeFromRoom(client, protocol.ReasonLeft)
}

// removeFromRoom drops the client from its room, deletes the room when
// it empties, and otherwise notifies the remaining members.
func (h *Hub) removeFromRoom(client *Client, reason string) {
	if client.RoomID == "" {
		return
	}

	room, ok := h.Rooms[client.RoomID]
	if !ok {
		return
	}

	if !room.Remove(client) {
		return
	}
	client.RoomID = ""

	if room.Empty() {
		delete(h.Rooms, room.ID)
		slog.Info("room deleted", "room", room.ID)
		return
	}

	slog.Info("peer left room", "room", room.ID, "username", client.Username, "reason", reason)

	notice, err := protocol.NewMessage(protocol.TypePeerLeft, protocol.PeerLeftPayload{
		SocketID: client.SocketID,
		Username: client.Username,
		Reason:   reason,
	})
	if err != nil {
		slog.Error("failed to encode peer-left notice", "error", err)
		return
	}

	for _, member := range room.Members {
		member.Send <- notice
	}
}

func (h *Hub) sendError(client *Client, text string) {
	msg, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Error: text})
	if err != nil {
		return
	}
	client.Send <- msg
}
