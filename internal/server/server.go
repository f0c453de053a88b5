// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/watcher"
)

const (
	statusPath = "/api/v1/status"
	eventsPath = "/api/v1/events"

	headerTrain = "X-Trainwatch-Train"

	shutdownGrace = 5 * time.Second
)

// StatusSource is the read side of a watcher.
type StatusSource interface {
	Status() status.Status
	State() watcher.State
}

// Server wraps HTTP handlers for the trainwatch API.
type Server struct {
	source StatusSource
	hub    *Hub
	logger *slog.Logger
}

// New creates the API server. hub may be nil to disable the event stream.
func New(source StatusSource, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		source: source,
		hub:    hub,
		logger: logger.With("component", "server"),
	}
}

// Handler returns the API HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc(statusPath, s.handleStatus)
	if s.hub != nil {
		mux.HandleFunc(eventsPath, s.handleEvents)
	}
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	if s.hub != nil {
		s.hub.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if state := s.source.State(); state != watcher.Running {
		http.Error(w, "watcher "+state.String(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := s.source.Status()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(headerTrain, strconv.Itoa(st.Train))
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.logger.Error("failed to encode status", "error", err)
		http.Error(w, fmt.Sprintf("failed to encode status: %v", err), http.StatusInternalServerError)
		return
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.hub.serve(w, r, NewEvent(s.source.Status(), nil))
}
