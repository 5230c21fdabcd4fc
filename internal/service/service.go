// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer. Seat accounting lives in
// Ledger, AdmissionController and Allocator; EventService adds ownership
// checks and domain events on top.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/events"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/repository"
)

// EventService orchestrates event, ticket type and booking operations.
type EventService struct {
	store     repository.Store
	ledger    *Ledger
	admission *AdmissionController
	allocator *Allocator
	publisher events.Publisher
	log       *logger.Logger
}

// NewEventService wires the core components around one store.
func NewEventService(store repository.Store, publisher events.Publisher, log *logger.Logger) *EventService {
	return &EventService{
		store:     store,
		ledger:    NewLedger(store),
		admission: NewAdmissionController(store, log),
		allocator: NewAllocator(store, log),
		publisher: publisher,
		log:       log,
	}
}

// ─── Events ──────────────────────────────────────────────────────────────────

// CreateEvent validates the request and stores a new event owned by caller.
func (s *EventService) CreateEvent(ctx context.Context, caller model.Caller, req model.CreateEventRequest) (*model.Event, error) {
	if err := requireOrganizer(caller); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("event title is required")
	}
	if err := validateCapacity(req.Capacity); err != nil {
		return nil, err
	}
	if req.StartDateTime.IsZero() {
		return nil, invalid("start_date_time is required")
	}

	ev := &model.Event{
		OrganizerID:   caller.UserID,
		Title:         req.Title,
		Description:   strings.TrimSpace(req.Description),
		Location:      strings.TrimSpace(req.Location),
		Category:      strings.TrimSpace(req.Category),
		Capacity:      req.Capacity,
		StartDateTime: req.StartDateTime.UTC(),
	}
	if err := s.store.InsertEvent(ctx, ev); err != nil {
		return nil, storeErr("insert event", "event", err)
	}
	s.log.LogDatabase("INSERT", "events", "created event "+ev.ID)
	return ev, nil
}

// ListEvents returns unblocked events with remaining capacity and seats.
func (s *EventService) ListEvents(ctx context.Context) ([]model.EventDetails, error) {
	evs, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, storeErr("list events", "event", err)
	}
	details := make([]model.EventDetails, 0, len(evs))
	for i := range evs {
		d, err := s.describe(ctx, &evs[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// GetEvent returns one event with remaining capacity and per ticket type
// remaining seats.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.EventDetails, error) {
	ev, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, storeErr("get event", "event", err)
	}
	return s.describe(ctx, ev)
}

func (s *EventService) describe(ctx context.Context, ev *model.Event) (*model.EventDetails, error) {
	tts, err := s.ListTicketTypes(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	d := &model.EventDetails{Event: *ev, TicketTypes: tts}
	if !ev.Unlimited() {
		booked, err := bookedForEvent(ctx, s.store, ev.ID)
		if err != nil {
			return nil, err
		}
		remaining := *ev.Capacity - booked
		d.RemainingCapacity = &remaining
	}
	return d, nil
}

// GetRemainingCapacity returns the event's unbooked capacity, nil when
// unlimited.
func (s *EventService) GetRemainingCapacity(ctx context.Context, eventID string) (*int, error) {
	return s.ledger.RemainingCapacity(ctx, eventID)
}

// UpdateEventCapacity changes an event's capacity. The new capacity must
// still hold all configured seat limits.
func (s *EventService) UpdateEventCapacity(ctx context.Context, caller model.Caller, eventID string, capacity *int) (*model.Event, error) {
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}

	var updated *model.Event
	err := s.store.WithTx(ctx, func(q repository.Querier) error {
		ev, err := q.LockEvent(ctx, eventID)
		if err != nil {
			return storeErr("lock event", "event", err)
		}
		if err := requireOwner(caller, ev); err != nil {
			return err
		}
		if capacity != nil {
			total, err := seatLimitTotal(ctx, q, ev.ID, "")
			if err != nil {
				return err
			}
			if *capacity < total {
				return invalid("capacity %d is below the sum of ticket seat limits (%d)", *capacity, total)
			}
		}
		if err := q.UpdateEventCapacity(ctx, ev.ID, capacity); err != nil {
			return storeErr("update event capacity", "event", err)
		}
		ev.Capacity = capacity
		updated = ev
		return nil
	})
	if err != nil {
		return nil, storeErr("update event capacity", "event", err)
	}
	s.log.LogDatabase("UPDATE", "events", "capacity changed for event "+eventID)
	return updated, nil
}

// DeleteEvent hard-deletes an event with its ticket types and bookings.
// Allowed for the owning organizer and for admins.
func (s *EventService) DeleteEvent(ctx context.Context, caller model.Caller, eventID string) error {
	err := s.store.WithTx(ctx, func(q repository.Querier) error {
		ev, err := q.LockEvent(ctx, eventID)
		if err != nil {
			return storeErr("lock event", "event", err)
		}
		if caller.Role != model.RoleAdmin {
			if err := requireOwner(caller, ev); err != nil {
				return err
			}
		}
		if err := q.DeleteEvent(ctx, eventID); err != nil {
			return storeErr("delete event", "event", err)
		}
		return nil
	})
	if err != nil {
		return storeErr("delete event", "event", err)
	}
	s.log.LogDatabase("DELETE", "events", "deleted event "+eventID)
	return nil
}

// ListAttendees returns every booking of an event. Owner only.
func (s *EventService) ListAttendees(ctx context.Context, caller model.Caller, eventID string) ([]model.Booking, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("get event", "event", err)
	}
	if err := requireOwner(caller, ev); err != nil {
		return nil, err
	}
	bookings, err := s.store.ListBookingsByEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("list bookings", "event", err)
	}
	return bookings, nil
}

// ─── Ticket types ────────────────────────────────────────────────────────────

// ListTicketTypes returns an event's ticket types with remaining seats.
func (s *EventService) ListTicketTypes(ctx context.Context, eventID string) ([]model.TicketTypeDetails, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, storeErr("get event", "event", err)
	}
	tts, err := s.store.ListTicketTypes(ctx, eventID)
	if err != nil {
		return nil, storeErr("list ticket types", "event", err)
	}
	out := make([]model.TicketTypeDetails, 0, len(tts))
	for _, tt := range tts {
		booked, err := bookedForTicketType(ctx, s.store, tt.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TicketTypeDetails{TicketType: tt, RemainingSeats: tt.SeatLimit - booked})
	}
	return out, nil
}

// GetTicketType returns one ticket type with remaining seats.
func (s *EventService) GetTicketType(ctx context.Context, id string) (*model.TicketTypeDetails, error) {
	tt, err := s.store.GetTicketType(ctx, id)
	if err != nil {
		return nil, storeErr("get ticket type", "ticket type", err)
	}
	booked, err := bookedForTicketType(ctx, s.store, tt.ID)
	if err != nil {
		return nil, err
	}
	return &model.TicketTypeDetails{TicketType: *tt, RemainingSeats: tt.SeatLimit - booked}, nil
}

// GetRemainingSeats returns seatLimit minus confirmed quantity.
func (s *EventService) GetRemainingSeats(ctx context.Context, ticketTypeID string) (int, error) {
	return s.ledger.RemainingSeats(ctx, ticketTypeID)
}

// CreateTicketType adds a ticket type to an event the caller owns.
func (s *EventService) CreateTicketType(ctx context.Context, caller model.Caller, eventID string, req model.CreateTicketTypeRequest) (*model.TicketType, error) {
	if err := s.requireEventOwner(ctx, caller, eventID); err != nil {
		return nil, err
	}
	return s.allocator.CreateTicketType(ctx, eventID, req)
}

// UpdateTicketType applies a partial update to a ticket type the caller owns.
func (s *EventService) UpdateTicketType(ctx context.Context, caller model.Caller, ticketTypeID string, patch model.UpdateTicketTypeRequest) (*model.TicketType, error) {
	if err := s.requireTicketTypeOwner(ctx, caller, ticketTypeID); err != nil {
		return nil, err
	}
	return s.allocator.UpdateTicketType(ctx, ticketTypeID, patch)
}

// UpdateTicketTypeSeatLimit changes only the seat limit of a ticket type
// the caller owns.
func (s *EventService) UpdateTicketTypeSeatLimit(ctx context.Context, caller model.Caller, ticketTypeID string, seatLimit int) (*model.TicketType, error) {
	if err := s.requireTicketTypeOwner(ctx, caller, ticketTypeID); err != nil {
		return nil, err
	}
	return s.allocator.UpdateTicketTypeSeatLimit(ctx, ticketTypeID, seatLimit)
}

// DeleteTicketType removes a ticket type and its bookings.
func (s *EventService) DeleteTicketType(ctx context.Context, caller model.Caller, ticketTypeID string) error {
	if err := s.requireTicketTypeOwner(ctx, caller, ticketTypeID); err != nil {
		return err
	}
	return s.allocator.DeleteTicketType(ctx, ticketTypeID)
}

// ─── Bookings ────────────────────────────────────────────────────────────────

// BookTicket admits a booking and announces it. A failed announcement is
// logged; the booking stands.
func (s *EventService) BookTicket(ctx context.Context, caller model.Caller, eventID string, req model.BookTicketRequest) (*model.Booking, error) {
	b, err := s.admission.Admit(ctx, AdmissionRequest{
		EventID:      eventID,
		TicketTypeID: req.TicketTypeID,
		UserID:       caller.UserID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeBookingConfirmed, b)
	return b, nil
}

// CancelBooking moves the caller's CONFIRMED booking to CANCELLED, which
// returns its quantity to the ledger.
func (s *EventService) CancelBooking(ctx context.Context, caller model.Caller, bookingID string) (*model.Booking, error) {
	var cancelled *model.Booking
	err := s.store.WithTx(ctx, func(q repository.Querier) error {
		b, err := q.GetBooking(ctx, bookingID)
		if err != nil {
			return storeErr("get booking", "booking", err)
		}
		if b.UserID != caller.UserID && caller.Role != model.RoleAdmin {
			return forbidden("you can only cancel your own bookings")
		}
		if _, err := q.LockEvent(ctx, b.EventID); err != nil {
			return storeErr("lock event", "event", err)
		}
		if b, err = q.GetBooking(ctx, bookingID); err != nil {
			return storeErr("get booking", "booking", err)
		}
		if b.Status != model.BookingConfirmed {
			return invalid("booking is already %s", strings.ToLower(string(b.Status)))
		}
		if err := q.UpdateBookingStatus(ctx, b.ID, model.BookingCancelled); err != nil {
			return storeErr("update booking status", "booking", err)
		}
		b.Status = model.BookingCancelled
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, storeErr("cancel booking", "booking", err)
	}

	s.log.LogBooking("CANCELLED", cancelled.ID, fmt.Sprintf("user=%s quantity=%d released", cancelled.UserID, cancelled.Quantity))
	s.publish(ctx, events.TypeBookingCancelled, cancelled)
	return cancelled, nil
}

func (s *EventService) publish(ctx context.Context, eventType string, b *model.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBooking(ctx, events.NewBookingEvent(eventType, b)); err != nil {
		s.log.Error("EVENTS", fmt.Sprintf("publish %s for booking %s: %v", eventType, b.ID, err))
	}
}

func validateCapacity(capacity *int) error {
	if capacity == nil {
		return nil
	}
	if *capacity < 0 {
		return invalid("capacity must be a non-negative integer")
	}
	if *capacity > MaxCount {
		return invalid("capacity must not exceed %d", MaxCount)
	}
	return nil
}

// ─── Access checks ───────────────────────────────────────────────────────────

func requireOrganizer(caller model.Caller) error {
	if caller.Role != model.RoleOrganizer {
		return forbidden("only organizers can create events")
	}
	if !caller.Approved {
		return forbidden("organizer account is not approved yet")
	}
	return nil
}

// requireOwner also rejects organizers whose approval was revoked after
// they created the event.
func requireOwner(caller model.Caller, ev *model.Event) error {
	if ev.OrganizerID != caller.UserID {
		return forbidden("you can only modify your own events")
	}
	if caller.Role == model.RoleOrganizer && !caller.Approved {
		return forbidden("organizer account is not approved")
	}
	return nil
}

func (s *EventService) requireEventOwner(ctx context.Context, caller model.Caller, eventID string) error {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return storeErr("get event", "event", err)
	}
	return requireOwner(caller, ev)
}

func (s *EventService) requireTicketTypeOwner(ctx context.Context, caller model.Caller, ticketTypeID string) error {
	tt, err := s.store.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return storeErr("get ticket type", "ticket type", err)
	}
	return s.requireEventOwner(ctx, caller, tt.EventID)
}
