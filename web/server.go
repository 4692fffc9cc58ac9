// Package web exposes a local HTTP API for inspecting the running
// session: connection status, configured pins, and a live websocket
// tap of message events.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mircad/telelink/agent"
)

// Server serves the local status API for one session.
type Server struct {
	session *agent.Session
	hub     *hub
	http    *http.Server
}

func NewServer(session *agent.Session, bind string) *Server {
	s := &Server{
		session: session,
		hub:     newHub(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/pins", s.handlePins)
	r.Get("/ws", s.hub.serveWs)

	s.http = &http.Server{Addr: bind, Handler: r}
	return s
}

// Start runs the hub and the HTTP listener, and installs the event tap
// on the session. It blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	go s.hub.run()

	s.session.SetTap(func(ev agent.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		select {
		case s.hub.broadcast <- data:
		default:
			// The tap must never block the session loops.
		}
	})

	slog.Info("Web API listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener and detaches the event tap.
func (s *Server) Shutdown(ctx context.Context) error {
	s.session.SetTap(nil)
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"device_id": s.session.DeviceID(),
		"status":    s.session.Status().String(),
		"battery":   s.session.BatteryLevel(),
		"time":      time.Now().UTC(),
	})
}

func (s *Server) handlePins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session.PinsSnapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
