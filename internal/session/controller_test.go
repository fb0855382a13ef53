package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BioHazard786/coderoom/internal/document"
	"github.com/BioHazard786/coderoom/internal/protocol"
	"github.com/BioHazard786/coderoom/internal/roster"
)

// fakeTransport lets tests inject synthetic protocol messages through
// the controller's dispatch table and record everything it sends.
type fakeTransport struct {
	mu         sync.Mutex
	sent       []protocol.Message
	incoming   chan protocol.Message
	connectErr error
	faultErr   error
	closes     int
	closeOnce  sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{incoming: make(chan protocol.Message, 16)}
}

func (f *fakeTransport) Connect() error { return f.connectErr }

func (f *fakeTransport) Send(msg protocol.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeTransport) Incoming() <-chan protocol.Message { return f.incoming }

func (f *fakeTransport) Err() error { return f.faultErr }

func (f *fakeTransport) Close() {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.incoming) })
}

func (f *fakeTransport) deliver(t *testing.T, typ string, payload any) {
	t.Helper()
	msg, err := protocol.NewMessage(typ, payload)
	require.NoError(t, err)
	f.incoming <- msg
}

func (f *fakeTransport) sentOfType(typ string) []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []protocol.Message
	for _, m := range f.sent {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events channel closed while waiting for an event")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func waitClosed(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session teardown")
	}
}

func newTestController(tr Transport) (*Controller, *roster.Store, *document.Relay) {
	ros := roster.New()
	relay := document.NewRelay()
	return New(tr, ros, relay), ros, relay
}

func TestController_Start_Sends_Join(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, _ := newTestController(tr)

	// When the session starts
	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	// Then exactly one join request went out with the room and identity
	req.Eventually(func() bool {
		return len(tr.sentOfType(protocol.TypeJoin)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var payload protocol.JoinPayload
	req.NoError(tr.sentOfType(protocol.TypeJoin)[0].DecodePayload(&payload))
	req.Equal("room-1", payload.RoomID)
	req.Equal("alice", payload.Username)

	// And the handshake is still pending
	req.Equal(StateConnecting, ctrl.State())
}

func TestController_Start_Requires_Identity(t *testing.T) {
	req := require.New(t)
	ctrl, _, _ := newTestController(newFakeTransport())

	req.ErrorIs(ctrl.Start("room-1", ""), ErrMissingIdentity)
}

func TestController_Second_Start_Is_Rejected(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, _ := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	req.ErrorIs(ctrl.Start("room-1", "alice"), ErrSessionStarted)
}

func TestController_Own_Join_Ack_Activates_Without_Notification(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, ros, relay := newTestController(tr)
	relay.OnLocalEdit("print(1)")

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	// When the server acknowledges our own join
	tr.deliver(t, protocol.TypeJoined, protocol.JoinedPayload{
		Clients:  []protocol.Peer{{SocketID: "a1", Username: "alice"}},
		Username: "alice",
		SocketID: "a1",
	})

	// Then the session goes active and the roster holds the full list.
	// LocalID is assigned last in the handler, so once it is visible the
	// rest of the handler's effects are too.
	req.Eventually(func() bool {
		return ctrl.LocalID() == "a1"
	}, 2*time.Second, 10*time.Millisecond)
	req.Equal(StateActive, ctrl.State())
	req.Equal(1, ros.Len())

	// And no peer notification and no self-addressed sync were produced
	req.Empty(tr.sentOfType(protocol.TypeSync))
	select {
	case ev := <-ctrl.Events():
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func TestController_Peer_Join_Replaces_Roster_And_Syncs_The_Late_Joiner(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, ros, relay := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	tr.deliver(t, protocol.TypeJoined, protocol.JoinedPayload{
		Clients:  []protocol.Peer{{SocketID: "a1", Username: "alice"}},
		Username: "alice",
		SocketID: "a1",
	})

	// Given a held document snapshot
	relay.OnLocalEdit("print(1)")

	// When bob joins and the server broadcasts the new full roster
	tr.deliver(t, protocol.TypeJoined, protocol.JoinedPayload{
		Clients: []protocol.Peer{
			{SocketID: "a1", Username: "alice"},
			{SocketID: "b1", Username: "bob"},
		},
		Username: "bob",
		SocketID: "b1",
	})

	// Then the shell is told about the new peer
	ev := waitEvent(t, ctrl.Events())
	req.Equal(EventPeerJoined, ev.Kind)
	req.Equal("bob", ev.Peer.DisplayName)

	// And the roster equals the latest authoritative list
	req.Equal([]roster.Participant{
		{ID: "a1", DisplayName: "alice"},
		{ID: "b1", DisplayName: "bob"},
	}, ros.All())

	// And a catch-up sync went out addressed to bob alone
	req.Eventually(func() bool {
		return len(tr.sentOfType(protocol.TypeSync)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	syncs := tr.sentOfType(protocol.TypeSync)
	req.Len(syncs, 1)
	var payload protocol.SyncPayload
	req.NoError(syncs[0].DecodePayload(&payload))
	req.Equal("print(1)", payload.Code)
	req.Equal("b1", payload.SocketID)
}

func TestController_Peer_Join_Without_Snapshot_Sends_No_Sync(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, _ := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	tr.deliver(t, protocol.TypeJoined, protocol.JoinedPayload{
		Clients: []protocol.Peer{
			{SocketID: "a1", Username: "alice"},
			{SocketID: "b1", Username: "bob"},
		},
		Username: "bob",
		SocketID: "b1",
	})

	ev := waitEvent(t, ctrl.Events())
	req.Equal(EventPeerJoined, ev.Kind)
	req.Empty(tr.sentOfType(protocol.TypeSync))
}

func TestController_Peer_Left_Removes_From_Roster(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, ros, _ := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	tr.deliver(t, protocol.TypeJoined, protocol.JoinedPayload{
		Clients: []protocol.Peer{
			{SocketID: "a1", Username: "alice"},
			{SocketID: "b1", Username: "bob"},
		},
		Username: "bob",
		SocketID: "b1",
	})
	waitEvent(t, ctrl.Events())

	// When bob's disconnect notice arrives
	tr.deliver(t, protocol.TypePeerLeft, protocol.PeerLeftPayload{
		SocketID: "b1",
		Username: "bob",
		Reason:   protocol.ReasonDisconnected,
	})

	ev := waitEvent(t, ctrl.Events())
	req.Equal(EventPeerLeft, ev.Kind)
	req.Equal(protocol.ReasonDisconnected, ev.Reason)
	req.Equal([]roster.Participant{{ID: "a1", DisplayName: "alice"}}, ros.All())

	// And a duplicate notice is recovered as a no-op
	tr.deliver(t, protocol.TypePeerLeft, protocol.PeerLeftPayload{
		SocketID: "b1",
		Username: "bob",
		Reason:   protocol.ReasonDisconnected,
	})
	waitEvent(t, ctrl.Events())
	req.Equal([]roster.Participant{{ID: "a1", DisplayName: "alice"}}, ros.All())
}

func TestController_Late_Joiner_Adopts_The_Synced_Document(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, relay := newTestController(tr)

	surfaced := make(chan string, 1)
	relay.SetOnReplace(func(code string) {
		surfaced <- code
	})

	req.NoError(ctrl.Start("room-1", "bob"))
	defer ctrl.Leave()

	// Given bob's own join listed him in the roster
	tr.deliver(t, protocol.TypeJoined, protocol.JoinedPayload{
		Clients: []protocol.Peer{
			{SocketID: "a1", Username: "alice"},
			{SocketID: "b1", Username: "bob"},
		},
		Username: "bob",
		SocketID: "b1",
	})

	// When the targeted catch-up sync arrives
	tr.deliver(t, protocol.TypeSync, protocol.SyncPayload{Code: "print(1)", SocketID: "b1"})

	// Then the editing surface is told and the snapshot equals the
	// sender's document, last writer wins
	select {
	case code := <-surfaced:
		req.Equal("print(1)", code)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the surface callback")
	}
	code, ok := relay.Snapshot()
	req.True(ok)
	req.Equal("print(1)", code)
}

func TestController_Local_Edits_Are_Published_Outward(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, relay := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	// When the editing surface reports a local change
	relay.OnLocalEdit("print(1)")

	// Then a live edit broadcast goes out with the full text
	changes := tr.sentOfType(protocol.TypeCodeChange)
	req.Len(changes, 1)
	var payload protocol.CodeChangePayload
	req.NoError(changes[0].DecodePayload(&payload))
	req.Equal("print(1)", payload.Code)
}

func TestController_Inbound_Code_Change_Replaces_The_Document(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, relay := newTestController(tr)

	surfaced := make(chan string, 1)
	relay.SetOnReplace(func(code string) {
		surfaced <- code
	})

	req.NoError(ctrl.Start("room-1", "alice"))
	defer ctrl.Leave()

	tr.deliver(t, protocol.TypeCodeChange, protocol.CodeChangePayload{Code: "print(2)"})

	select {
	case code := <-surfaced:
		req.Equal("print(2)", code)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the surface callback")
	}
	code, ok := relay.Snapshot()
	req.True(ok)
	req.Equal("print(2)", code)
}

func TestController_Leave_Twice_Emits_One_Notice_And_One_Teardown(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, _ := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))

	ctrl.Leave()
	ctrl.Leave()
	waitClosed(t, ctrl.Done())

	req.Len(tr.sentOfType(protocol.TypeLeave), 1)
	req.Equal(1, tr.closeCount())
	req.Equal(StateTerminated, ctrl.State())

	// And the events channel drains closed
	_, ok := <-ctrl.Events()
	req.False(ok)
}

func TestController_Connect_Failure_Never_Reaches_Active(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	tr.connectErr = errors.New("connection refused")
	ctrl, ros, _ := newTestController(tr)

	err := ctrl.Start("room-1", "alice")

	req.Error(err)
	req.Equal(StateTerminated, ctrl.State())
	req.Zero(ros.Len())

	// The events channel closes without any event: navigation away is
	// the caller's single reaction to the returned error.
	_, ok := <-ctrl.Events()
	req.False(ok)
}

func TestController_Transport_Fault_Is_Terminal(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, _ := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))

	// When the connection drops underneath the session
	tr.faultErr = errors.New("unexpected EOF")
	tr.closeOnce.Do(func() { close(tr.incoming) })

	// Then exactly one fault event surfaces and the session terminates
	ev := waitEvent(t, ctrl.Events())
	req.Equal(EventFault, ev.Kind)
	req.ErrorContains(ev.Err, "unexpected EOF")

	_, ok := <-ctrl.Events()
	req.False(ok)
	req.Equal(StateTerminated, ctrl.State())
}

func TestController_Server_Rejection_Is_Terminal(t *testing.T) {
	req := require.New(t)
	tr := newFakeTransport()
	ctrl, _, _ := newTestController(tr)

	req.NoError(ctrl.Start("room-1", "alice"))

	tr.deliver(t, protocol.TypeError, protocol.ErrorPayload{Error: "room is full"})

	ev := waitEvent(t, ctrl.Events())
	req.Equal(EventFault, ev.Kind)
	req.ErrorIs(ev.Err, ErrServerRejected)
	req.ErrorContains(ev.Err, "room is full")

	waitClosed(t, ctrl.Done())
	req.Equal(StateTerminated, ctrl.State())
}
