package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
)

// Server — HTTP фасад интервью: старт сессии, прием реплик, поллинг
// сообщений, остановка и метрики.
type Server struct {
	cfg      config.ServerConfig
	sessions *SessionManager
	metrics  *metrics.Metrics
	limiter  *RateLimiter
}

func NewServer(cfg config.ServerConfig, sessions *SessionManager, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		metrics:  m,
		limiter:  NewRateLimiter(120, time.Minute),
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/start", s.handleStart)
		r.Post("/message", s.handleMessage)
		r.Get("/poll", s.handlePoll)
		r.Post("/stop", s.handleStop)
		r.Get("/metrics", s.handleMetrics)
	})

	return r
}

// rateLimit режет слишком частые запросы с одного адреса.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "слишком много запросов, попробуйте позже")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run запускает сервер и останавливает его по SIGINT/SIGTERM, дожидаясь
// активных запросов в пределах таймаута.
func (s *Server) Run() error {
	stop := make(chan struct{})
	defer close(stop)
	go s.sessions.RunCleanup(stop, s.limiter)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP сервер запущен на порту %d", s.cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка HTTP сервера: %w", err)
	case sig := <-quit:
		log.Printf("Получен сигнал %v, останавливаем сервер", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return nil
}
