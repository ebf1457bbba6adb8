package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ebetancourt/luna/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API for web frontends.

Endpoints:
  POST /v1/chat   drive a guided journaling session ({"session_id","message"})
  GET  /healthz   liveness check`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orch == nil {
			return fmt.Errorf("journaling service not initialized")
		}

		addr := serveAddr
		if addr == "" {
			addr = Cfg.Server.ListenAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Listening on %s\n", addr)
		srv := server.New(Orch, Events)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			return fmt.Errorf("running HTTP API: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
