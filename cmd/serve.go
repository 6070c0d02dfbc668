package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kattalitextile/sitekit/internal/config"
	"github.com/kattalitextile/sitekit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server with live reload",
	Long: `Start the development server. It serves the static shell and page
fragments, pushes reload messages over a WebSocket when site content changes
on disk, and exposes the navigation engine through /api/page/{id}.

Examples:
  sitekit serve                    # Serve on the configured port
  sitekit serve --port 3000        # Override the port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8090, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("static-root", "web", "Directory holding the static shell")
	serveCmd.Flags().String("partials-dir", "web/partials", "Directory holding page fragments")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.static_root", serveCmd.Flags().Lookup("static-root"))
	viper.BindPFlag("server.partials_dir", serveCmd.Flags().Lookup("partials-dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info(ctx, "shutting down")
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			logger.Error(ctx, shutdownErr, "server shutdown")
		}
		cancel()
	}()

	fmt.Printf("Serving %s at http://%s:%d\n", cfg.Site.Name, cfg.Server.Host, cfg.Server.Port)

	return srv.Start(ctx)
}
