package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/coderoom/internal/ui"
	"github.com/BioHazard786/coderoom/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "coderoom",
	Short:   "Realtime collaborative code rooms in your terminal",
	Long:    `CodeRoom lets a group edit the same piece of code live from their terminals. Host a room, share its id, and every participant who joins sees edits as they happen, with the roster of connected people always in view. A built-in room server makes self-hosting a one-liner.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
