package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/BioHazard786/coderoom/internal/config"
	"github.com/BioHazard786/coderoom/internal/ui"
)

var (
	flagHostDomain   string
	flagHostUsername string
	flagHostInsecure bool
)

var hostCmd = &cobra.Command{
	Use:     "host",
	Aliases: []string{"h", "new"},
	Short:   "Create a new room and join it",
	Long: `Mint a fresh room id, print it for sharing, and enter the room
as its first participant.

Examples:
  coderoom host --username lata
  coderoom host --domain localhost:8080 --insecure`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostRoom()
	},
}

func hostRoom() error {
	cfg, err := loadConfig(config.Options{
		Domain:   flagHostDomain,
		Username: flagHostUsername,
		Insecure: flagHostInsecure,
	})
	if err != nil {
		return err
	}

	roomID := uuid.NewString()

	fmt.Println()
	ui.RenderRoomInfo(roomID, cfg.RoomLink(roomID))

	fmt.Println()
	return runSession(newSessionContext(cfg), roomID)
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().StringVarP(&flagHostDomain, "domain", "d", "", "Custom server domain")
	hostCmd.Flags().StringVarP(&flagHostUsername, "username", "u", "", "Display name announced to the room")
	hostCmd.Flags().BoolVar(&flagHostInsecure, "insecure", false, "Use plain ws:// (local development)")
}
