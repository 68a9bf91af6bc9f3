// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package web serves the camera status over HTTP: the latest fix, the
// publish queue and a websocket stream of live events.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/racecam/internal/gps"
	"github.com/relabs-tech/racecam/internal/store"
)

// FixSource provides the latest processed fix.
type FixSource interface {
	Latest() (gps.Fix, bool)
}

// QueueLister provides a snapshot of the publish queue.
type QueueLister interface {
	Entries(ctx context.Context) ([]store.Entry, error)
}

// QueueStatus is the /api/queue response.
type QueueStatus struct {
	Drainer string        `json:"drainer"`
	Pending int           `json:"pending"`
	Entries []store.Entry `json:"entries"`
}

// Server is the status HTTP server.
type Server struct {
	router *mux.Router
	hub    *Hub
	fixes  FixSource
	queue  QueueLister
	state  func() string
	logger *slog.Logger
}

// NewServer wires the routes. state reports the drainer phase and may be
// nil when no drainer runs.
func NewServer(fixes FixSource, queue QueueLister, state func() string, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		hub:    hub,
		fixes:  fixes,
		queue:  queue,
		state:  state,
		logger: logger,
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/gps", s.handleGPS).Methods(http.MethodGet)
	api.HandleFunc("/queue", s.handleQueue).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/ws", hub)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleGPS(w http.ResponseWriter, r *http.Request) {
	fix, ok := s.fixes.Latest()
	if !ok {
		http.Error(w, "no fix yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, fix)
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := s.queue.Entries(r.Context())
	if err != nil {
		s.logger.Error("queue snapshot failed", "err", err)
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
		return
	}

	status := QueueStatus{Drainer: "disabled", Pending: len(entries), Entries: entries}
	if s.state != nil {
		status.Drainer = s.state()
	}
	s.writeJSON(w, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("json encode failed", "err", err)
	}
}
