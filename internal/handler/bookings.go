package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/go-chi/chi/v5"
)

// BookTicket handles POST /events/{id}/book
// 409 means the ticket type or the event has no room for the quantity.
func (h *EventHandler) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req model.BookTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TicketTypeID == "" {
		writeError(w, http.StatusBadRequest, "ticket_type_id is required")
		return
	}

	booking, err := h.svc.BookTicket(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// CancelBooking handles POST /bookings/{id}/cancel
func (h *EventHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.svc.CancelBooking(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
