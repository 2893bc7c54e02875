package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/assistant"
)

const DefaultAddr = "127.0.0.1:8765"

// Config controls the HTTP surface used by the browser extension. AllowedOrigins are
// path.Match patterns such as "chrome-extension://*"; an empty list admits no browser origin.
type Config struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type Server struct {
	assistant *assistant.Assistant
	cfg       Config
	logger    *zap.Logger
	router    chi.Router
}

func New(a *assistant.Assistant, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{assistant: a, cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(cors(s.cfg.AllowedOrigins, s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/activity", s.activity)
		r.Get("/history", s.history)

		r.Post("/answers/resolve", s.resolve)
		r.Post("/answers", s.saveAnswer)

		r.Post("/jobs", s.trackJob)
		r.Post("/jobs/applied", s.markApplied)

		r.Get("/conversation", s.conversation)
		r.Delete("/conversation", s.clearConversation)

		r.Post("/patterns", s.learn)
		r.Post("/fields/recall", s.recall)
		r.Post("/fields/generate", s.generate)
		r.Post("/fields/recommend", s.recommend)

		r.Post("/forms/analyze", s.analyzeForm)
		r.Post("/applications", s.saveApplication)

		r.Get("/stats", s.stats)
		r.Post("/stats/{counter}", s.incrementStat)
	})

	r.Get("/ws/activity", s.activityStream)

	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// no WriteTimeout: inference calls and websockets are long lived
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}

	return nil
}
