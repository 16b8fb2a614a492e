// Package api assembles the broker's HTTP surface: the three job-lifecycle
// endpoints plus metrics and health, wrapped in the same CORS/logging
// middleware shape the platform's own gateway uses.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ocx/engine-broker/internal/broker"
)

type Server struct {
	broker  *broker.Broker
	healthy func() error
	log     *slog.Logger
	http    *http.Server
}

func NewServer(b *broker.Broker, healthy func() error, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{broker: b, healthy: healthy, log: log}
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/api/external-engine/{id}/analyse", func(w http.ResponseWriter, r *http.Request) {
		s.broker.Analyse(w, r, mux.Vars(r)["id"])
	}).Methods("POST", "OPTIONS")

	r.HandleFunc("/api/external-engine/work", s.broker.Acquire).Methods("POST", "OPTIONS")

	r.HandleFunc("/api/external-engine/work/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.broker.Submit(w, r, mux.Vars(r)["id"])
	}).Methods("POST", "OPTIONS")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.healthy != nil {
		if err := s.healthy(); err != nil {
			http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		reqID, _ := r.Context().Value(requestIDKey{}).(string)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "request_id", reqID, "duration", time.Since(start))
	})
}

// Start runs the HTTP server until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, bind string) error {
	s.http = &http.Server{Addr: bind, Handler: s.router()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", bind)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api: graceful shutdown failed: %w", err)
		}
		return nil
	}
}
