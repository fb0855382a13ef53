package session

import "github.com/BioHazard786/coderoom/internal/roster"

// EventKind discriminates shell-facing session events.
type EventKind int

const (
	// EventPeerJoined fires when another participant enters the room.
	EventPeerJoined EventKind = iota

	// EventPeerLeft fires when a participant is removed from the room.
	EventPeerLeft

	// EventFault fires once when the session dies from a transport
	// fault or a server rejection. The session is terminal afterwards;
	// the shell should navigate away.
	EventFault
)

// Event is a notification from the session controller to the
// presentation shell. Document replacement does not travel here; it goes
// through the relay's editing-surface callback.
type Event struct {
	Kind EventKind
	Peer roster.Participant

	// Reason qualifies EventPeerLeft: "left" or "disconnected".
	Reason string

	// Err is set for EventFault.
	Err error
}
