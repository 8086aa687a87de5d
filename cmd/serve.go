package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crashlens/crashlens/internal/observability"
	"github.com/crashlens/crashlens/internal/server"
)

var (
	serveHost string
	servePort int
)

// serveCmd runs the analysis HTTP server until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crash analysis HTTP server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer observability.Sync()

		// CLI flags override the configured listen address.
		if cmd.Flags().Changed("host") || cmd.Flags().Changed("port") {
			cfg.Server.ListenAddr = fmt.Sprintf("%s:%d", serveHost, servePort)
		}

		srv, err := server.New(cfg, observability.GetLogger())
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		return srv.Start(cmd.Context())
	},
}

func init() {
	// Default to localhost; this is an internal diagnostic tool.
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "host address to listen on (use 0.0.0.0 for all interfaces)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
