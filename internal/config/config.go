package config

import "os"

// Default configuration values (production)
const (
	DefaultDomain = "coderoom.qzz.io"
)

// Config holds application configuration
type Config struct {
	// Domain is the room server domain
	Domain string

	// WebSocketURL is constructed from domain
	WebSocketURL string

	// Username is the local display identity announced on join
	Username string

	// Insecure selects plain ws:// for local development servers
	Insecure bool
}

// Options for loading config with CLI flag overrides
type Options struct {
	Domain   string
	Username string
	Insecure bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
//
// Username has no hardcoded default: a missing identity is a
// precondition failure the caller reports before any session starts.
func Load(opts Options) (*Config, error) {
	// Load domain: CLI flag > env > default
	domain := opts.Domain
	if domain == "" {
		domain = os.Getenv("CODEROOM_DOMAIN")
	}
	if domain == "" {
		domain = DefaultDomain
	}

	// Load identity: CLI flag > env; may end up empty
	username := opts.Username
	if username == "" {
		username = os.Getenv("CODEROOM_USERNAME")
	}

	scheme := "wss"
	if opts.Insecure {
		scheme = "ws"
	}

	return &Config{
		Domain:       domain,
		WebSocketURL: scheme + "://" + domain + "/ws",
		Username:     username,
		Insecure:     opts.Insecure,
	}, nil
}

// RoomLink returns the shareable URL for a room ID
func (c *Config) RoomLink(roomID string) string {
	return "https://" + c.Domain + "/r/" + roomID
}
