package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanvale/morrow/internal/handler"
	"github.com/rowanvale/morrow/internal/middleware"
	"github.com/rowanvale/morrow/internal/notify"
	"github.com/rowanvale/morrow/internal/store"
	ws "github.com/rowanvale/morrow/internal/websocket"
)

type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	eventH    *handler.EventHandler
	reminders *notify.Scheduler
	logger    *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	eventStore := store.NewEventStore(db)

	return &Server{
		db:        db,
		hub:       hub,
		eventH:    handler.NewEventHandler(eventStore, hub, logger.With("component", "events")),
		reminders: notify.NewScheduler(eventStore, hub, logger.With("component", "reminders")),
		logger:    logger,
	}
}

// ReminderScheduler returns the reminder scheduler for lifecycle management.
func (s *Server) ReminderScheduler() *notify.Scheduler {
	return s.reminders
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("POST /api/events/{id}/move", s.eventH.Move)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
