package service

import (
	"context"
	"math"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/repository"
)

// MaxCount bounds capacities, seat limits and booking quantities. They are
// stored in INTEGER columns.
const MaxCount = math.MaxInt32

// Ledger answers how many seats are committed, computed from CONFIRMED
// bookings at call time. Nothing is cached.
type Ledger struct {
	store repository.Store
}

// NewLedger constructs a Ledger.
func NewLedger(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// BookedQuantityForTicketType returns the confirmed quantity for a ticket
// type, 0 if it has no bookings.
func (l *Ledger) BookedQuantityForTicketType(ctx context.Context, ticketTypeID string) (int, error) {
	return bookedForTicketType(ctx, l.store, ticketTypeID)
}

// BookedQuantityForEvent returns the confirmed quantity across all ticket
// types of an event, 0 if it has no bookings.
func (l *Ledger) BookedQuantityForEvent(ctx context.Context, eventID string) (int, error) {
	return bookedForEvent(ctx, l.store, eventID)
}

// RemainingSeats is seatLimit minus the confirmed quantity. It can be
// negative if the seat limit was lowered below what is already sold.
func (l *Ledger) RemainingSeats(ctx context.Context, ticketTypeID string) (int, error) {
	tt, err := l.store.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return 0, storeErr("get ticket type", "ticket type", err)
	}
	booked, err := bookedForTicketType(ctx, l.store, ticketTypeID)
	if err != nil {
		return 0, err
	}
	return tt.SeatLimit - booked, nil
}

// RemainingCapacity is capacity minus the confirmed quantity for the event,
// or nil when the event has unlimited capacity.
func (l *Ledger) RemainingCapacity(ctx context.Context, eventID string) (*int, error) {
	ev, err := l.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("get event", "event", err)
	}
	if ev.Unlimited() {
		return nil, nil
	}
	booked, err := bookedForEvent(ctx, l.store, eventID)
	if err != nil {
		return nil, err
	}
	remaining := *ev.Capacity - booked
	return &remaining, nil
}

func bookedForTicketType(ctx context.Context, q repository.Querier, ticketTypeID string) (int, error) {
	n, err := q.SumConfirmedByTicketType(ctx, ticketTypeID)
	if err != nil {
		return 0, storeErr("sum bookings for ticket type", "ticket type", err)
	}
	return n, nil
}

func bookedForEvent(ctx context.Context, q repository.Querier, eventID string) (int, error) {
	n, err := q.SumConfirmedByEvent(ctx, eventID)
	if err != nil {
		return 0, storeErr("sum bookings for event", "event", err)
	}
	return n, nil
}
