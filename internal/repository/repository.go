// Package repository is the persistence boundary for events, ticket types
// and bookings. The PostgreSQL implementation uses pgx directly (no ORM);
// the in-memory implementation backs tests and STORE=memory.
package repository

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Querier is the set of queries available both on the store and inside a
// transaction started by Store.WithTx.
type Querier interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	// LockEvent reads an event and holds its row lock until the enclosing
	// transaction ends. Every write that can change an event's seat
	// accounting takes this lock first.
	LockEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	InsertEvent(ctx context.Context, e *model.Event) error
	UpdateEventCapacity(ctx context.Context, id string, capacity *int) error
	DeleteEvent(ctx context.Context, id string) error

	GetTicketType(ctx context.Context, id string) (*model.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]model.TicketType, error)
	InsertTicketType(ctx context.Context, tt *model.TicketType) error
	UpdateTicketType(ctx context.Context, tt *model.TicketType) error
	DeleteTicketType(ctx context.Context, id string) error

	// SumConfirmedByTicketType is SUM(quantity) over CONFIRMED bookings of
	// one ticket type; 0 when there are none.
	SumConfirmedByTicketType(ctx context.Context, ticketTypeID string) (int, error)
	// SumConfirmedByEvent is SUM(quantity) over CONFIRMED bookings whose
	// ticket type belongs to the event; 0 when there are none.
	SumConfirmedByEvent(ctx context.Context, eventID string) (int, error)

	InsertBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
	ListBookingsByEvent(ctx context.Context, eventID string) ([]model.Booking, error)
}

// Store is a Querier that can also run a unit of work atomically.
type Store interface {
	Querier
	// WithTx runs fn in a transaction. If fn returns an error nothing it
	// wrote is kept and that error is returned unchanged.
	WithTx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
	Close()
}
