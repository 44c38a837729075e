package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sharebox-go/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if port > 0 {
				a.cfg.Port = port
			}

			log.Info().
				Str("environment", a.cfg.Env).
				Str("log_level", zerolog.GlobalLevel().String()).
				Str("version", version).
				Str("commit", commit).
				Str("built", date).
				Msg("Starting sharebox")
			a.cfg.Log()

			return serve(cmd.Context(), server.NewServer(a.cfg, a.client))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides PORT)")
	return cmd
}

// serve runs until ctx is cancelled, then drains connections.
func serve(ctx context.Context, srv *server.Server) error {
	httpServer := srv.Start(ctx)
	defer srv.Stop()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Disable keep-alives for new connections
		httpServer.SetKeepAlivesEnabled(false)

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	log.Info().
		Str("addr", httpServer.Addr).
		Msg("Server is ready to handle requests")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-shutdownDone
	log.Info().Msg("Server shutdown completed")
	return nil
}
