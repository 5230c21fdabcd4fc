// Package model defines the core domain types for the ticketing system.
package model

import "time"

// TicketName is the fare class of a ticket type.
type TicketName string

const (
	TicketRegular   TicketName = "regular"
	TicketVIP       TicketName = "vip"
	TicketEarlyBird TicketName = "early_bird"
)

// Valid reports whether n is one of the known fare classes.
func (n TicketName) Valid() bool {
	switch n {
	case TicketRegular, TicketVIP, TicketEarlyBird:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking. Only CONFIRMED
// bookings count against seat limits and capacity.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Role is the caller's role as asserted by the identity layer.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// Caller identifies who is making a request.
type Caller struct {
	UserID   string
	Role     Role
	Approved bool
}

// Event is an organizer-owned event. A nil Capacity means unlimited.
type Event struct {
	ID            string    `json:"id"`
	OrganizerID   string    `json:"organizer_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Category      string    `json:"category"`
	Capacity      *int      `json:"capacity"`
	IsBlocked     bool      `json:"is_blocked"`
	StartDateTime time.Time `json:"start_date_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// Unlimited reports whether the event has no overall capacity.
func (e *Event) Unlimited() bool {
	return e.Capacity == nil
}

// TicketType is a fare class within one event.
type TicketType struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	Name       TicketName `json:"name"`
	PriceCents int64      `json:"price_cents"`
	SeatLimit  int        `json:"seat_limit"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Booking is one admitted purchase. Quantity and price never change after
// creation; only Status may move from CONFIRMED to CANCELLED.
type Booking struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	TicketTypeID    string        `json:"ticket_type_id"`
	EventID         string        `json:"event_id"`
	Quantity        int           `json:"quantity"`
	TotalPriceCents int64         `json:"total_price_cents"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// TicketTypeDetails is a ticket type with its derived remaining seats.
type TicketTypeDetails struct {
	TicketType
	RemainingSeats int `json:"remaining_seats"`
}

// EventDetails is an event with derived availability figures.
type EventDetails struct {
	Event
	RemainingCapacity *int                `json:"remaining_capacity"`
	TicketTypes       []TicketTypeDetails `json:"ticket_types"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Category      string    `json:"category"`
	Capacity      *int      `json:"capacity"`
	StartDateTime time.Time `json:"start_date_time"`
}

// UpdateCapacityRequest sets or clears (null) an event's capacity.
type UpdateCapacityRequest struct {
	Capacity *int `json:"capacity"`
}

// CreateTicketTypeRequest is the payload for adding a ticket type.
type CreateTicketTypeRequest struct {
	Name       TicketName `json:"name"`
	PriceCents int64      `json:"price_cents"`
	SeatLimit  int        `json:"seat_limit"`
}

// UpdateTicketTypeRequest is a partial update; nil fields are left alone.
type UpdateTicketTypeRequest struct {
	Name       *TicketName `json:"name,omitempty"`
	PriceCents *int64      `json:"price_cents,omitempty"`
	SeatLimit  *int        `json:"seat_limit,omitempty"`
}

// BookTicketRequest is the payload for booking seats of one ticket type.
type BookTicketRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// RemainingCapacityResponse is returned by the event availability endpoint.
type RemainingCapacityResponse struct {
	EventID           string `json:"event_id"`
	RemainingCapacity *int   `json:"remaining_capacity"`
}

// RemainingSeatsResponse is returned by the ticket type availability endpoint.
type RemainingSeatsResponse struct {
	TicketTypeID   string `json:"ticket_type_id"`
	RemainingSeats int    `json:"remaining_seats"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BookingResult summarises the outcome of a single booking attempt.
// Used by the concurrent booking tests.
type BookingResult struct {
	UserID  string
	Booking *Booking
	Err     error
}
