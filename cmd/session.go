package cmd

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/BioHazard786/coderoom/internal/config"
	"github.com/BioHazard786/coderoom/internal/document"
	"github.com/BioHazard786/coderoom/internal/roster"
	"github.com/BioHazard786/coderoom/internal/session"
	"github.com/BioHazard786/coderoom/internal/transport"
	"github.com/BioHazard786/coderoom/internal/ui"
)

// sessionContext bundles everything one room session owns. A fresh one
// is built per join; nothing here is shared between sessions.
type sessionContext struct {
	Config     *config.Config
	Roster     *roster.Store
	Relay      *document.Relay
	Controller *session.Controller
}

func loadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, session.NewError("load config", err)
	}

	if cfg.Username == "" {
		return nil, errors.New("no username set: pass --username or set CODEROOM_USERNAME")
	}

	return cfg, nil
}

// newSessionContext builds the session plumbing around a fresh
// transport handle. The transport is owned by the controller from here
// on; teardown goes through Controller.Leave.
func newSessionContext(cfg *config.Config) *sessionContext {
	ros := roster.New()
	relay := document.NewRelay()
	client := transport.NewClient(cfg.WebSocketURL)

	return &sessionContext{
		Config:     cfg,
		Roster:     ros,
		Relay:      relay,
		Controller: session.New(client, ros, relay),
	}
}

// runSession starts the session and hands the terminal to the editor
// shell until the session ends.
func runSession(ctx *sessionContext, roomID string) error {
	sp := ui.NewConnectionSpinner("Connecting to server...")
	sp.Start()
	if err := ctx.Controller.Start(roomID, ctx.Config.Username); err != nil {
		sp.Stop()
		return err
	}
	sp.Success("Connected")

	if err := ui.RunEditor(ctx.Controller, ctx.Relay, ctx.Roster, ctx.Config); err != nil {
		return err
	}

	ui.PrintSuccessf("Left room %s", roomID)

	// The roster still holds the last authoritative view from before
	// the leave; show who keeps the room alive.
	others := lo.Reject(ctx.Roster.All(), func(p roster.Participant, _ int) bool {
		return p.ID == ctx.Controller.LocalID()
	})
	if len(others) > 0 {
		ui.PrintInfo("Still in the room:")
		fmt.Println(ui.RosterTable(others))
	}
	return nil
}
