package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("CODEROOM_DOMAIN", "")
	t.Setenv("CODEROOM_USERNAME", "")

	cfg, err := Load(Options{})
	req.NoError(err)

	req.Equal(DefaultDomain, cfg.Domain)
	req.Equal("wss://"+DefaultDomain+"/ws", cfg.WebSocketURL)
	req.Empty(cfg.Username)
}

func TestLoad_Flag_Beats_Env(t *testing.T) {
	req := require.New(t)
	t.Setenv("CODEROOM_DOMAIN", "env.example.com")
	t.Setenv("CODEROOM_USERNAME", "env-user")

	cfg, err := Load(Options{Domain: "flag.example.com", Username: "flag-user"})
	req.NoError(err)

	req.Equal("flag.example.com", cfg.Domain)
	req.Equal("flag-user", cfg.Username)
}

func TestLoad_Env_Beats_Default(t *testing.T) {
	req := require.New(t)
	t.Setenv("CODEROOM_DOMAIN", "env.example.com")
	t.Setenv("CODEROOM_USERNAME", "env-user")

	cfg, err := Load(Options{})
	req.NoError(err)

	req.Equal("env.example.com", cfg.Domain)
	req.Equal("env-user", cfg.Username)
}

func TestLoad_Insecure_Uses_Plain_Websocket(t *testing.T) {
	req := require.New(t)

	cfg, err := Load(Options{Domain: "localhost:8080", Insecure: true})
	req.NoError(err)

	req.Equal("ws://localhost:8080/ws", cfg.WebSocketURL)
}

func TestRoomLink(t *testing.T) {
	req := require.New(t)

	cfg, err := Load(Options{Domain: "rooms.example.com"})
	req.NoError(err)

	req.Equal("https://rooms.example.com/r/abc-123", cfg.RoomLink("abc-123"))
}
