package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries what NewRouter needs besides the handler.
type RouterConfig struct {
	JWTSecret   string
	RateLimiter *RateLimiter // nil disables rate limiting
	Log         *logger.Logger
}

// NewRouter builds the chi router with the global middleware stack and all
// API routes. Reads are public; writes require a role.
func NewRouter(h *EventHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(cfg.Log))
	r.Use(CORS)
	r.Use(Identify(cfg.JWTSecret))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	organizer := RequireRole(model.RoleOrganizer)
	attendee := RequireRole(model.RoleAttendee)

	r.Get("/health", HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.With(organizer).Post("/", h.CreateEvent)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetEvent)
			r.Get("/remaining-capacity", h.GetRemainingCapacity)
			r.Get("/ticket-types", h.ListTicketTypes)

			r.With(organizer).Post("/ticket-types", h.CreateTicketType)
			r.With(organizer).Patch("/capacity", h.UpdateEventCapacity)
			r.With(organizer).Get("/attendees", h.ListAttendees)
			r.With(RequireRole(model.RoleOrganizer, model.RoleAdmin)).Delete("/", h.DeleteEvent)

			r.With(attendee).Post("/book", h.BookTicket)
		})
	})

	r.Route("/ticket-types/{id}", func(r chi.Router) {
		r.Get("/", h.GetTicketType)
		r.Get("/remaining-seats", h.GetRemainingSeats)
		r.With(organizer).Patch("/", h.UpdateTicketType)
		r.With(organizer).Delete("/", h.DeleteTicketType)
	})

	r.With(RequireRole(model.RoleAttendee, model.RoleAdmin)).Post("/bookings/{id}/cancel", h.CancelBooking)

	return r
}
