package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"sharebox-go/internal/views"
)

// redemption attempts allowed per client IP and minute
const redeemLimit = 10

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if s.config.Env == "dev" || s.config.Env == "development" {
		r.Use(middleware.NoCache)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.Origin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Serve static files
	fileServer := http.FileServer(http.FS(views.Assets)) // embedded in binary
	r.Handle("/assets/*", fileServer)

	r.NotFound(s.handleError404)

	r.Get("/health", s.healthHandler)
	r.Get("/favicon.ico", s.handleError404)

	r.Group(func(r chi.Router) {
		r.Use(s.SessionMiddleware)

		r.Get("/", s.handleHome)

		r.Route("/send", func(r chi.Router) {
			r.Post("/files", s.handleAddFiles)
			r.Post("/remove/{index}", s.handleRemoveFile)
			r.Post("/mode", s.handleSetMode)
			r.Post("/upload", s.handleUpload)
			r.Post("/text", s.handleShareText)
			r.Post("/copy/{target}", s.handleSendCopied)
			r.Post("/reset", s.handleSendReset)
		})

		r.Route("/receive", func(r chi.Router) {
			r.With(httprate.LimitByIP(redeemLimit, time.Minute)).Post("/", s.handleRedeem)
			r.Post("/select/{index}", s.handleSelectFile)
			r.Post("/back", s.handleBack)
			r.Post("/copy/{target}", s.handleReceiveCopied)
			r.Post("/reset", s.handleReceiveReset)
		})
	})

	// Share links are stateless: every visit redeems the hash again.
	r.Get("/{hash}", s.handleShareLink)

	return r
}
