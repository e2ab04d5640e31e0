package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pulseworks/rustwatch/internal/api"
	"github.com/pulseworks/rustwatch/internal/config"
	"github.com/pulseworks/rustwatch/internal/history"
	"github.com/pulseworks/rustwatch/internal/monitor"
)

type Server struct {
	cfg    *config.Config
	router chi.Router
}

func New(cfg *config.Config, m *monitor.Monitor, store *history.Store) *Server {
	statusHandler := api.NewStatusHandler(m, store)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api.TokenMiddleware(cfg.HTTP.TokenHash))

		r.Get("/status", statusHandler.Status)
		r.Get("/history", statusHandler.History)
	})

	return &Server{cfg: cfg, router: r}
}

func (s *Server) Router() chi.Router {
	return s.router
}
