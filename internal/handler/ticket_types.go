package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/go-chi/chi/v5"
)

// ListTicketTypes handles GET /events/{id}/ticket-types
func (h *EventHandler) ListTicketTypes(w http.ResponseWriter, r *http.Request) {
	tts, err := h.svc.ListTicketTypes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tts)
}

// CreateTicketType handles POST /events/{id}/ticket-types
func (h *EventHandler) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTicketTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tt, err := h.svc.CreateTicketType(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tt)
}

// GetTicketType handles GET /ticket-types/{id}
func (h *EventHandler) GetTicketType(w http.ResponseWriter, r *http.Request) {
	tt, err := h.svc.GetTicketType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tt)
}

// GetRemainingSeats handles GET /ticket-types/{id}/remaining-seats
func (h *EventHandler) GetRemainingSeats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	seats, err := h.svc.GetRemainingSeats(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.RemainingSeatsResponse{TicketTypeID: id, RemainingSeats: seats})
}

// UpdateTicketType handles PATCH /ticket-types/{id}
// Only the fields present in the body are changed.
func (h *EventHandler) UpdateTicketType(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTicketTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == nil && req.PriceCents == nil && req.SeatLimit == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	tt, err := h.svc.UpdateTicketType(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tt)
}

// DeleteTicketType handles DELETE /ticket-types/{id}
func (h *EventHandler) DeleteTicketType(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTicketType(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
