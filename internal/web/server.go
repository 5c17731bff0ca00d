// Package web serves the JSON API consumed by the moodtune UI.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/location"
	"github.com/justestif/moodtune/internal/recommend"
	"github.com/justestif/moodtune/internal/trends"
	"github.com/justestif/moodtune/internal/weather"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr   string
	Logger *zap.Logger

	History  *history.Service
	Trends   *trends.Service
	Weather  *weather.Service
	Location location.Provider

	// WeatherLocation is used when Location has no coordinate.
	WeatherLocation string

	// NewOrchestrator builds the orchestrator for a new browser session.
	NewOrchestrator func() *recommend.Orchestrator

	SessionTTL time.Duration
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions *SessionStore
	handlers *Handlers
	logger   *zap.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.History == nil || cfg.Trends == nil || cfg.Weather == nil || cfg.NewOrchestrator == nil {
		return nil, errors.New("server requires history, trends, weather and an orchestrator factory")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = location.None()
	}

	sessions := NewSessionStore(cfg.NewOrchestrator, cfg.SessionTTL)
	handlers := NewHandlers(cfg, sessions)

	s := &Server{
		router:   chi.NewRouter(),
		sessions: sessions,
		handlers: handlers,
		logger:   cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI requests resolve songs one by one
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.Health)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handlers.Catalog)
		r.Post("/test", s.handlers.SubmitTest)

		r.Get("/state", s.handlers.State)
		r.Post("/recommendations", s.handlers.Recommendations)
		r.Post("/trending", s.handlers.Trending)
		r.Get("/search", s.handlers.Search)
		r.Post("/ai", s.handlers.AIRecommendation)

		r.Get("/weather", s.handlers.Weather)

		r.Get("/history/{date}", s.handlers.HistoryByDate)
		r.Get("/history/month/{month}", s.handlers.HistoryMonth)
		r.Get("/trends/{month}", s.handlers.Trends)
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.sessions.Close()
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.sessions.Close()
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
