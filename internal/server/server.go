package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"sharebox-go/internal/config"
	"sharebox-go/internal/session"
	"sharebox-go/internal/share"
)

const janitorInterval = time.Minute

// Server represents the HTTP server and its dependencies
type Server struct {
	config  *config.Config
	client  *share.Client
	store   *session.Store
	janitor *session.Janitor
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, client *share.Client) *Server {
	store := session.NewStore(client, cfg.Limits(), cfg.SessionTTL)

	return &Server{
		config:  cfg,
		client:  client,
		store:   store,
		janitor: session.NewJanitor(store, janitorInterval),
	}
}

// Start starts the session janitor and returns the configured http.Server.
// Only headers are time-bounded since bodies may be large uploads.
func (s *Server) Start(ctx context.Context) *http.Server {
	s.janitor.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Int("port", s.config.Port).
		Str("env", s.config.Env).
		Msg("starting web front")

	return srv
}

// Stop halts background work started by Start.
func (s *Server) Stop() {
	s.janitor.Stop()
}

// sendJSON sends a JSON response with consistent formatting
func (s *Server) sendJSON(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: success,
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("error encoding JSON response")
	}
}
