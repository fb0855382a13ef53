package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BioHazard786/coderoom/internal/document"
	"github.com/BioHazard786/coderoom/internal/roster"
	"github.com/BioHazard786/coderoom/internal/session"
)

func TestNewEditorModel_Seeds_The_Surface_From_The_Relay(t *testing.T) {
	req := require.New(t)

	// Given a catch-up sync that landed before the shell started
	relay := document.NewRelay()
	relay.OnRemoteSync("print(1)")

	ros := roster.New()
	ctrl := session.New(nil, ros, relay)

	m := NewEditorModel(ctrl, relay, ros, nil)

	req.Equal("print(1)", m.textarea.Value())
}

func TestNewEditorModel_Starts_Empty_Without_A_Snapshot(t *testing.T) {
	req := require.New(t)

	relay := document.NewRelay()
	ros := roster.New()
	ctrl := session.New(nil, ros, relay)

	m := NewEditorModel(ctrl, relay, ros, nil)

	req.Empty(m.textarea.Value())
}
