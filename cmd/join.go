package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/coderoom/internal/config"
	"github.com/BioHazard786/coderoom/internal/session"
	"github.com/BioHazard786/coderoom/internal/ui"
)

var (
	flagDomain   string
	flagUsername string
	flagInsecure bool
)

var joinCmd = &cobra.Command{
	Use:     "join <room-id|url>",
	Aliases: []string{"j"},
	Short:   "Join an existing room",
	Long: `Join an existing collaboration room and open the shared editor.

Examples:
  coderoom join kitten-waffle-stardust --username lata
  coderoom join https://coderoom.qzz.io/r/kitten-waffle-stardust
  coderoom join dev-room --domain localhost:8080 --insecure`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID, err := parseRoomInput(args[0])
		if err != nil {
			return err
		}
		return joinRoom(roomID)
	},
}

func joinRoom(roomID string) error {
	cfg, err := loadConfig(config.Options{
		Domain:   flagDomain,
		Username: flagUsername,
		Insecure: flagInsecure,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	return runSession(newSessionContext(cfg), roomID)
}

func parseRoomInput(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("room ID cannot be empty")
	}

	if strings.Contains(input, "://") || strings.Contains(input, ".") {
		roomID, err := extractRoomIDFromURL(input)
		if err != nil {
			return "", err
		}
		ui.PrintSuccessf("Extracted room ID: %s", roomID)
		return roomID, nil
	}

	return input, nil
}

func extractRoomIDFromURL(urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", session.NewError("parse URL", err)
	}

	path := strings.TrimSuffix(parsedURL.Path, "/")
	parts := strings.Split(path, "/")

	for i, part := range parts {
		if part == "r" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}

	return "", fmt.Errorf("could not extract room ID from URL: %s", urlStr)
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVarP(&flagDomain, "domain", "d", "", "Custom server domain")
	joinCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Display name announced to the room")
	joinCmd.Flags().BoolVar(&flagInsecure, "insecure", false, "Use plain ws:// (local development)")
}
