package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"instacord/internal/database"
	"instacord/internal/dedup"
	"instacord/internal/metrics"
	"instacord/internal/middleware"
	"instacord/internal/service"
	"instacord/pkg/instagram"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router        *mux.Router
	logger        *logrus.Logger
	source        *instagram.InstagramClient
	db            *database.Database
	channelRouter *service.ChannelRouter
	ledger        *dedup.Ledger
	server        *http.Server
	port          int
}

func NewServer(port int, logger *logrus.Logger, source *instagram.InstagramClient, db *database.Database, channelRouter *service.ChannelRouter, ledger *dedup.Ledger) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		logger:        logger,
		source:        source,
		db:            db,
		channelRouter: channelRouter,
		ledger:        ledger,
		port:          port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":        "ok",
			"logged_in":     s.source.IsLoggedIn(),
			"ledger_size":   s.ledger.Size(),
			"cached_routes": s.channelRouter.CachedRoutes(),
		}
		if count, err := s.db.CountForwardedItems(r.Context()); err == nil {
			status["archived_items"] = count
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			s.logger.WithError(err).Error("Failed to encode health response")
		}
	}
}

// handleMetrics returns current application metrics
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(metrics.GetRegistry().Snapshot()); err != nil {
			s.logger.WithError(err).Error("Failed to encode metrics response")
		}
	}
}
