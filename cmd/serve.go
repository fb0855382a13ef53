package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/coderoom/internal/server"
)

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a room server",
	Long: `Run the websocket room server that relays joins, document syncs
and leave notices between participants.

Examples:
  coderoom serve
  coderoom serve --port 9000
  PORT=9000 coderoom serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	port := flagPort
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	hub := server.NewHub()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go hub.Run(ctx)

	addr := ":" + port
	slog.Info("room server listening", "addr", addr)
	fmt.Printf("Room server listening on http://localhost%s\n", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: server.NewMux(hub),
	}

	return srv.ListenAndServe()
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&flagPort, "port", "p", "", "Port to listen on (default 8080)")
}
