package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/BioHazard786/coderoom/internal/protocol"
)

// startRecordingServer runs a websocket endpoint that records every
// decoded frame it receives, in arrival order.
func startRecordingServer(t *testing.T) (string, func() []protocol.Message) {
	t.Helper()

	var mu sync.Mutex
	var received []protocol.Message

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.Decode(data)
			if err != nil {
				continue
			}
			mu.Lock()
			received = append(received, msg)
			mu.Unlock()
		}
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, func() []protocol.Message {
		mu.Lock()
		defer mu.Unlock()
		out := make([]protocol.Message, len(received))
		copy(out, received)
		return out
	}
}

func TestClient_Close_Flushes_Queued_Frames(t *testing.T) {
	req := require.New(t)
	wsURL, recorded := startRecordingServer(t)

	client := NewClient(wsURL)
	req.NoError(client.Connect())

	// Given a burst of edits with the leave notice queued last
	for i := 0; i < 8; i++ {
		edit, err := protocol.NewMessage(protocol.TypeCodeChange, protocol.CodeChangePayload{Code: "print(1)"})
		req.NoError(err)
		client.Send(edit)
	}
	leave, err := protocol.NewMessage(protocol.TypeLeave, protocol.JoinPayload{RoomID: "room-x", Username: "alice"})
	req.NoError(err)
	client.Send(leave)

	// When the handle is released right away
	client.Close()

	// Then every queued frame reaches the wire, the leave notice last
	req.Eventually(func() bool {
		return len(recorded()) == 9
	}, 2*time.Second, 10*time.Millisecond)

	msgs := recorded()
	req.Equal(protocol.TypeLeave, msgs[len(msgs)-1].Type)
}
