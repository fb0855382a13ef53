package session

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/BioHazard786/coderoom/internal/document"
	"github.com/BioHazard786/coderoom/internal/protocol"
	"github.com/BioHazard786/coderoom/internal/roster"
)

// Transport is the handle the controller drives. It is an ordered,
// at-most-once-per-message channel with explicit lifecycle: Connect
// opens it, the incoming channel closing means it is gone, and Err
// distinguishes a fault from a deliberate Close.
type Transport interface {
	Connect() error
	Send(protocol.Message)
	Incoming() <-chan protocol.Message
	Err() error
	Close()
}

// State is the session lifecycle position.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Controller owns one room session: it drives the join handshake over
// the injected transport, routes inbound protocol messages through a
// dispatch table to the roster store and the document relay, and manages
// the connecting -> active -> terminated lifecycle. Terminated is
// absorbing; teardown stops the dispatch loop so no handler can touch
// session state afterwards.
//
// All handlers run serially on the dispatch goroutine. The shell talks
// to the controller from its own goroutine only through Start, Leave,
// Events and the read-only accessors.
type Controller struct {
	transport Transport
	roster    *roster.Store
	relay     *document.Relay

	roomID   string
	username string

	state     atomic.Int32
	started   atomic.Bool
	leaveOnce sync.Once
	termOnce  sync.Once

	handlers map[string]func(protocol.Message)
	events   chan Event
	done     chan struct{}

	mu      sync.RWMutex
	localID string
}

// New builds a controller around an unconnected transport handle. The
// roster store and relay are owned by this session instance; nothing is
// shared across sessions.
func New(tr Transport, ros *roster.Store, relay *document.Relay) *Controller {
	return &Controller{
		transport: tr,
		roster:    ros,
		relay:     relay,
		events:    make(chan Event, 32),
		done:      make(chan struct{}),
	}
}

// Start opens the transport, wires the dispatch table, starts the
// dispatch loop and then emits the join request. The order matters: the
// handlers and the loop are in place before join goes out, so a fast
// joined reply cannot arrive before anything is listening for it.
//
// A connect failure is terminal. It is returned to the caller, who
// decides whether to re-attempt; the controller never retries on its
// own. Calling Start a second time returns ErrSessionStarted.
func (c *Controller) Start(roomID, username string) error {
	if username == "" {
		return ErrMissingIdentity
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrSessionStarted
	}

	c.roomID = roomID
	c.username = username

	if err := c.transport.Connect(); err != nil {
		c.state.Store(int32(StateTerminated))
		close(c.events)
		close(c.done)
		return NewError("connect to server", err)
	}

	c.handlers = map[string]func(protocol.Message){
		protocol.TypeJoined:     c.handleJoined,
		protocol.TypePeerLeft:   c.handlePeerLeft,
		protocol.TypeSync:       c.handleSync,
		protocol.TypeCodeChange: c.handleCodeChange,
		protocol.TypeError:      c.handleServerError,
	}

	// Local edits flow outward through the relay's publisher hook.
	c.relay.SetPublisher(func(code string) {
		if c.State() == StateTerminated {
			return
		}
		c.send(protocol.TypeCodeChange, protocol.CodeChangePayload{Code: code})
	})

	go c.dispatch()

	c.send(protocol.TypeJoin, protocol.JoinPayload{RoomID: roomID, Username: username})

	return nil
}

// dispatch consumes the transport in arrival order and routes each
// message through the handler table. It is the only goroutine that
// mutates roster and relay state, which keeps handler execution serial.
func (c *Controller) dispatch() {
	defer func() {
		close(c.events)
		close(c.done)
	}()

	for msg := range c.transport.Incoming() {
		if c.State() == StateTerminated {
			return
		}

		handler, ok := c.handlers[msg.Type]
		if !ok {
			slog.Debug("session: ignoring unknown message type", "type", msg.Type)
			continue
		}

		handler(msg)
	}

	// The incoming channel closed underneath an active session: a
	// mid-session transport fault, surfaced like a handshake failure.
	if c.State() != StateTerminated {
		err := c.transport.Err()
		if err == nil {
			err = ErrTransportDown
		}
		c.fail(NewError("session transport", err))
	}
}

// handleJoined applies the authoritative full roster carried by every
// joined event. If the trigger was another participant, the shell is
// notified and, when a document snapshot is held, a catch-up sync is
// sent addressed to that participant alone. Broadcasting the catch-up
// would turn every join into a room-wide sync storm.
func (c *Controller) handleJoined(msg protocol.Message) {
	var payload protocol.JoinedPayload
	if err := msg.DecodePayload(&payload); err != nil {
		slog.Warn("session: bad joined payload", "error", err)
		return
	}

	c.state.CompareAndSwap(int32(StateConnecting), int32(StateActive))

	list := make([]roster.Participant, 0, len(payload.Clients))
	for _, p := range payload.Clients {
		list = append(list, roster.Participant{ID: p.SocketID, DisplayName: p.Username})
	}
	c.roster.ReplaceAll(list)

	if payload.Username == c.username {
		c.mu.Lock()
		if c.localID == "" {
			c.localID = payload.SocketID
		}
		c.mu.Unlock()
		return
	}

	c.emit(Event{
		Kind: EventPeerJoined,
		Peer: roster.Participant{ID: payload.SocketID, DisplayName: payload.Username},
	})

	if code, ok := c.relay.Snapshot(); ok {
		c.send(protocol.TypeSync, protocol.SyncPayload{Code: code, SocketID: payload.SocketID})
	}
}

// handlePeerLeft removes the named participant. Removal of an unknown id
// is a no-op: duplicate and late leave notices are recovered locally,
// never surfaced as errors.
func (c *Controller) handlePeerLeft(msg protocol.Message) {
	var payload protocol.PeerLeftPayload
	if err := msg.DecodePayload(&payload); err != nil {
		slog.Warn("session: bad peer-left payload", "error", err)
		return
	}

	c.roster.RemoveByID(payload.SocketID)

	c.emit(Event{
		Kind:   EventPeerLeft,
		Peer:   roster.Participant{ID: payload.SocketID, DisplayName: payload.Username},
		Reason: payload.Reason,
	})
}

// handleSync is the late-joiner side of catch-up: this client received a
// targeted full-document sync from an existing peer.
func (c *Controller) handleSync(msg protocol.Message) {
	var payload protocol.SyncPayload
	if err := msg.DecodePayload(&payload); err != nil {
		slog.Warn("session: bad sync payload", "error", err)
		return
	}

	c.relay.OnRemoteSync(payload.Code)
}

// handleCodeChange applies a live edit broadcast by another
// participant. It reuses the sync path: overwrite whole, notify the
// editing surface.
func (c *Controller) handleCodeChange(msg protocol.Message) {
	var payload protocol.CodeChangePayload
	if err := msg.DecodePayload(&payload); err != nil {
		slog.Warn("session: bad code-change payload", "error", err)
		return
	}

	c.relay.OnRemoteSync(payload.Code)
}

// handleServerError treats any server-side rejection as terminal, the
// same way a handshake failure is treated. A session never silently
// resumes after the server refused it.
func (c *Controller) handleServerError(msg protocol.Message) {
	var payload protocol.ErrorPayload
	if err := msg.DecodePayload(&payload); err != nil {
		slog.Warn("session: bad error payload", "error", err)
	}

	c.fail(WrapError("session", ErrServerRejected, payload.Error))
}

// Leave sends the voluntary leave notice and releases the transport.
// Safe to call multiple times: the notice is emitted at most once, and
// later calls find the handle already released.
func (c *Controller) Leave() {
	c.leaveOnce.Do(func() {
		if c.started.Load() && c.State() != StateTerminated {
			c.send(protocol.TypeLeave, protocol.JoinPayload{RoomID: c.roomID, Username: c.username})
		}
		c.terminate()
	})
}

// fail runs on the dispatch goroutine only. It surfaces the terminal
// error to the shell exactly once and tears the session down.
func (c *Controller) fail(err error) {
	slog.Error("session failed", "room", c.roomID, "error", err)
	c.emit(Event{Kind: EventFault, Err: err})
	c.terminate()
}

func (c *Controller) terminate() {
	c.termOnce.Do(func() {
		c.state.Store(int32(StateTerminated))
		c.transport.Close()
	})
}

func (c *Controller) send(t string, payload any) {
	msg, err := protocol.NewMessage(t, payload)
	if err != nil {
		slog.Warn("session: failed to encode message", "type", t, "error", err)
		return
	}
	c.transport.Send(msg)
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("session: dropping event, shell not consuming", "kind", ev.Kind)
	}
}

// Events returns the shell-facing notification channel. It closes when
// the session terminates, whether by Leave or by a fault.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Done is closed once the dispatch loop has exited and no handler will
// run again.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// State reports the current lifecycle position.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// RoomID returns the immutable room identifier for this session.
func (c *Controller) RoomID() string {
	return c.roomID
}

// Username returns the local display identity.
func (c *Controller) Username() string {
	return c.username
}

// LocalID returns the server-assigned id of the local participant, empty
// until the local join has been acknowledged.
func (c *Controller) LocalID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.localID
}
