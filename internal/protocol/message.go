package protocol

import "github.com/vmihailenco/msgpack/v5"

// Message represents all frames exchanged between a room client and the
// room server. Frames travel as msgpack-encoded binary websocket messages.
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload,omitempty"`
}

// Message type constants.
const (
	// client -> server
	TypeJoin  = "join"
	TypeLeave = "leave"

	// client -> client, relayed through the server to one recipient
	TypeSync = "sync"

	// client -> rest of room, relayed through the server
	TypeCodeChange = "code-change"

	// server -> client(s)
	TypeJoined   = "joined"
	TypePeerLeft = "peer-left"
	TypeError    = "error"
)

// Reasons carried by a peer-left notice. A voluntary leave and a dropped
// connection are distinct on the wire so clients can present them apart.
const (
	ReasonLeft         = "left"
	ReasonDisconnected = "disconnected"
)

// Peer identifies one room participant as the server sees it. SocketID is
// assigned by the server per connection and never reused within a session.
type Peer struct {
	SocketID string `msgpack:"socket_id"`
	Username string `msgpack:"username"`
}

// JoinPayload is sent by a client to enter a room. The same shape is used
// for the voluntary leave notice.
type JoinPayload struct {
	RoomID   string `msgpack:"room_id"`
	Username string `msgpack:"username"`
}

// JoinedPayload carries the authoritative full roster after any join,
// plus the identity of the participant whose join triggered it.
type JoinedPayload struct {
	Clients  []Peer `msgpack:"clients"`
	Username string `msgpack:"username"`
	SocketID string `msgpack:"socket_id"`
}

// SyncPayload is the full-document catch-up for a late joiner. SocketID
// names the single recipient; the server must not broadcast it.
type SyncPayload struct {
	Code     string `msgpack:"code"`
	SocketID string `msgpack:"socket_id"`
}

// CodeChangePayload carries a live full-document edit to the rest of
// the room. Last writer wins; there is no merging of concurrent edits.
type CodeChangePayload struct {
	Code string `msgpack:"code"`
}

// PeerLeftPayload announces one participant's removal from the room.
type PeerLeftPayload struct {
	SocketID string `msgpack:"socket_id"`
	Username string `msgpack:"username"`
	Reason   string `msgpack:"reason"`
}

// ErrorPayload represents error messages from the server.
type ErrorPayload struct {
	Error string `msgpack:"error"`
}

// DecodePayload decodes the message payload into the provided struct
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewMessage creates a new Message with the given type and payload
func NewMessage(t string, payload any) (Message, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:    t,
		Payload: b,
	}, nil
}

// Encode serializes the whole frame for the wire.
func (m Message) Encode() ([]byte, error) {
	return msgpack.Marshal(m)
}

// Decode parses a wire frame into a Message.
func Decode(b []byte) (Message, error) {
	var m Message
	err := msgpack.Unmarshal(b, &m)
	return m, err
}
