package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rowanvale/morrow/internal/model"
	"github.com/rowanvale/morrow/internal/overlap"
	"github.com/rowanvale/morrow/internal/recurrence"
	"github.com/rowanvale/morrow/internal/schedule"
	"github.com/rowanvale/morrow/internal/store"
	"github.com/rowanvale/morrow/internal/websocket"
)

// Broadcaster pushes change notifications to connected calendar views.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

type EventHandler struct {
	store  *store.EventStore
	hub    Broadcaster
	logger *slog.Logger
}

func NewEventHandler(s *store.EventStore, hub Broadcaster, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: s, hub: hub, logger: logger}
}

// parseForm decodes and validates an event draft. Well-formedness is checked
// here at the boundary; the core packages assume valid input.
func (h *EventHandler) parseForm(w http.ResponseWriter, r *http.Request) (*model.EventForm, bool) {
	var form model.EventForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, false
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return nil, false
	}
	if !validDate(form.Date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return nil, false
	}
	if !validTime(form.StartTime) || !validTime(form.EndTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "times must be HH:MM"})
		return nil, false
	}
	if form.StartTime >= form.EndTime {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start time must be before end time"})
		return nil, false
	}

	switch form.Repeat.Type {
	case "", model.RepeatNone:
		form.Repeat = model.None()
	case model.RepeatDaily, model.RepeatWeekly, model.RepeatMonthly, model.RepeatYearly:
		if form.Repeat.Interval < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "repeat interval must be positive"})
			return nil, false
		}
		if form.Repeat.EndDate != "" && !validDate(form.Repeat.EndDate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "repeat end date must be YYYY-MM-DD"})
			return nil, false
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown repeat type"})
		return nil, false
	}

	return &form, true
}

// Create stores a new event. Repeating forms are expanded into their full
// series and bulk-inserted without an overlap check; standalone events pass
// the overlap gate unless force=true.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	if form.Repeat.Type != model.RepeatNone {
		instances, err := recurrence.Expand(form.Repeat, form.Date, *form)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		created, err := h.store.CreateBulk(instances)
		if err != nil {
			h.logger.Error("create series", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create events"})
			return
		}

		for _, e := range created {
			h.hub.Broadcast(websocket.EventChanged("created", e.ID))
		}
		writeJSON(w, http.StatusCreated, created)
		return
	}

	if h.overlapGate(w, r, eventFromForm(*form, 0, "")) {
		return
	}

	event, err := h.store.Create(*form)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create event"})
		return
	}

	h.hub.Broadcast(websocket.EventChanged("created", event.ID))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	event, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update edits one event. Recurring targets require scope=single|series:
// single detaches the record from its series, series updates every instance's
// shared fields. The overlap gate runs against the edited instance either
// way, bypassed with force=true.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	if h.overlapGate(w, r, eventFromForm(*form, id, existing.SeriesID)) {
		return
	}

	if !schedule.IsRecurring(*existing) {
		updated, err := h.store.Update(id, eventFromForm(*form, id, ""))
		if err != nil {
			h.logger.Error("update event", "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
			return
		}
		h.hub.Broadcast(websocket.EventChanged("updated", id))
		writeJSON(w, http.StatusOK, updated)
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope != "single" && scope != "series" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scope=single or scope=series is required for recurring events"})
		return
	}

	action := schedule.ResolveEdit(*existing, *form, scope == "single")
	switch action.Kind {
	case schedule.ActionUpdateOne:
		// The resolved fields carry a reset repeat rule; dropping the series
		// id completes the detach.
		updated, err := h.store.Update(action.ID, eventFromForm(action.Fields, action.ID, ""))
		if err != nil {
			h.logger.Error("update event", "id", action.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
			return
		}
		h.hub.Broadcast(websocket.EventChanged("updated", action.ID))
		writeJSON(w, http.StatusOK, updated)

	case schedule.ActionUpdateSeries:
		updated, err := h.store.UpdateSeries(action.SeriesID, action.Fields)
		if err != nil {
			h.logger.Error("update series", "series_id", action.SeriesID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update series"})
			return
		}
		for _, e := range updated {
			h.hub.Broadcast(websocket.EventChanged("updated", e.ID))
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// Delete removes one event, or a whole series when scope=series.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	if !schedule.IsRecurring(*existing) {
		if err := h.store.Delete(id); err != nil {
			h.logger.Error("delete event", "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete event"})
			return
		}
		h.hub.Broadcast(websocket.EventChanged("deleted", id))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope != "single" && scope != "series" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scope=single or scope=series is required for recurring events"})
		return
	}

	action := schedule.ResolveDelete(*existing, scope == "single")
	switch action.Kind {
	case schedule.ActionDeleteOne:
		if err := h.store.Delete(action.ID); err != nil {
			h.logger.Error("delete event", "id", action.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete event"})
			return
		}
		h.hub.Broadcast(websocket.EventChanged("deleted", action.ID))

	case schedule.ActionDeleteSeries:
		// Snapshot the member ids first so every deleted instance gets its
		// own notification, mirroring the series update path.
		members, err := h.store.ListBySeries(action.SeriesID)
		if err != nil {
			h.logger.Error("list series", "series_id", action.SeriesID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete series"})
			return
		}
		if err := h.store.DeleteSeries(action.SeriesID); err != nil {
			h.logger.Error("delete series", "series_id", action.SeriesID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete series"})
			return
		}
		for _, e := range members {
			h.hub.Broadcast(websocket.EventChanged("deleted", e.ID))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	Date string `json:"date"`
}

// Move applies a drag-initiated date change: only the date moves, times are
// preserved, and a recurring instance detaches from its series. Responds 204
// for a no-op drop, 409 with the conflicting events unless force=true.
func (h *EventHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	dragged, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if dragged == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	events, err := h.store.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}

	outcome := schedule.Relocate(dragged, req.Date, events)
	if outcome.NoOp {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if len(outcome.Overlaps) > 0 && !forced(r) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "schedule conflict",
			"overlaps": outcome.Overlaps,
		})
		return
	}

	updated, err := h.store.Update(id, *outcome.Event)
	if err != nil {
		h.logger.Error("move event", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to move event"})
		return
	}

	h.hub.Broadcast(websocket.EventChanged("updated", id))
	writeJSON(w, http.StatusOK, updated)
}

// overlapGate checks a candidate against all stored events and writes a 409
// response when it conflicts and the request is not forced. It reports
// whether the caller should stop.
func (h *EventHandler) overlapGate(w http.ResponseWriter, r *http.Request, candidate model.Event) bool {
	events, err := h.store.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return true
	}

	conflicts := overlap.FindOverlapping(candidate, events)
	if len(conflicts) > 0 && !forced(r) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "schedule conflict",
			"overlaps": conflicts,
		})
		return true
	}
	return false
}

func eventFromForm(form model.EventForm, id int64, seriesID string) model.Event {
	return model.Event{
		ID:               id,
		SeriesID:         seriesID,
		Title:            form.Title,
		Description:      form.Description,
		Location:         form.Location,
		Category:         form.Category,
		Date:             form.Date,
		StartTime:        form.StartTime,
		EndTime:          form.EndTime,
		Repeat:           form.Repeat,
		NotificationTime: form.NotificationTime,
	}
}

func forced(r *http.Request) bool {
	return r.URL.Query().Get("force") == "true"
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
