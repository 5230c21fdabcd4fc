// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/service"
	"github.com/go-chi/chi/v5"
)

// EventHandler holds all HTTP handlers for the ticketing API.
type EventHandler struct {
	svc *service.EventService
	log *logger.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps service error kinds to HTTP statuses.
// Infrastructure failures are logged and reported generically.
func (h *EventHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, msg)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, service.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, msg)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, msg)
	default:
		h.log.Error("API", r.Method+" "+r.URL.Path+": "+err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Events ───────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), callerFrom(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns unblocked events with remaining capacity and seats.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// GetRemainingCapacity handles GET /events/{id}/remaining-capacity
// A null remaining_capacity means the event is unlimited.
func (h *EventHandler) GetRemainingCapacity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	remaining, err := h.svc.GetRemainingCapacity(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.RemainingCapacityResponse{EventID: id, RemainingCapacity: remaining})
}

// UpdateEventCapacity handles PATCH /events/{id}/capacity
func (h *EventHandler) UpdateEventCapacity(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCapacityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEventCapacity(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req.Capacity)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAttendees handles GET /events/{id}/attendees
func (h *EventHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListAttendees(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
