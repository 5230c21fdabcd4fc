package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/repository"
)

// Allocator keeps the sum of an event's ticket-type seat limits within the
// event's capacity. It is the only gate for seat limit writes and never
// looks at bookings.
type Allocator struct {
	store repository.Store
	log   *logger.Logger
}

// NewAllocator constructs an Allocator.
func NewAllocator(store repository.Store, log *logger.Logger) *Allocator {
	return &Allocator{store: store, log: log}
}

// ValidateNewTicketType reports whether a ticket type with seatLimit may be
// added to the event. It reads without locking; CreateTicketType repeats
// the check under the event lock.
func (a *Allocator) ValidateNewTicketType(ctx context.Context, eventID string, seatLimit int) error {
	ev, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return storeErr("get event", "event", err)
	}
	return checkNewSeatLimit(ctx, a.store, ev, seatLimit)
}

// ValidateTicketTypeUpdate reports whether the ticket type's seat limit may
// become newSeatLimit, counting only its siblings.
func (a *Allocator) ValidateTicketTypeUpdate(ctx context.Context, ticketTypeID string, newSeatLimit int) error {
	tt, err := a.store.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return storeErr("get ticket type", "ticket type", err)
	}
	ev, err := a.store.GetEvent(ctx, tt.EventID)
	if err != nil {
		return storeErr("get event", "event", err)
	}
	return checkSeatLimitUpdate(ctx, a.store, ev, tt.ID, newSeatLimit)
}

// CreateTicketType validates and inserts a ticket type under the event lock.
func (a *Allocator) CreateTicketType(ctx context.Context, eventID string, req model.CreateTicketTypeRequest) (*model.TicketType, error) {
	if err := validateTicketFields(req.Name, req.PriceCents); err != nil {
		return nil, err
	}

	var created *model.TicketType
	err := a.store.WithTx(ctx, func(q repository.Querier) error {
		ev, err := q.LockEvent(ctx, eventID)
		if err != nil {
			return storeErr("lock event", "event", err)
		}
		if err := checkNewSeatLimit(ctx, q, ev, req.SeatLimit); err != nil {
			return err
		}
		tt := &model.TicketType{
			EventID:    ev.ID,
			Name:       req.Name,
			PriceCents: req.PriceCents,
			SeatLimit:  req.SeatLimit,
		}
		if err := q.InsertTicketType(ctx, tt); err != nil {
			return storeErr("insert ticket type", "event", err)
		}
		created = tt
		return nil
	})
	if err != nil {
		return nil, storeErr("create ticket type", "ticket type", err)
	}

	a.log.Info("ALLOCATOR", fmt.Sprintf("ticket type %s (%s) created for event %s with seat limit %d",
		created.ID, created.Name, eventID, created.SeatLimit))
	return created, nil
}

// UpdateTicketTypeSeatLimit changes only the seat limit.
func (a *Allocator) UpdateTicketTypeSeatLimit(ctx context.Context, ticketTypeID string, newSeatLimit int) (*model.TicketType, error) {
	return a.UpdateTicketType(ctx, ticketTypeID, model.UpdateTicketTypeRequest{SeatLimit: &newSeatLimit})
}

// UpdateTicketType applies a partial update. A seat limit change is checked
// against the event capacity under the event lock; name and price changes
// are validated on their own.
func (a *Allocator) UpdateTicketType(ctx context.Context, ticketTypeID string, patch model.UpdateTicketTypeRequest) (*model.TicketType, error) {
	var updated *model.TicketType
	err := a.store.WithTx(ctx, func(q repository.Querier) error {
		tt, err := q.GetTicketType(ctx, ticketTypeID)
		if err != nil {
			return storeErr("get ticket type", "ticket type", err)
		}
		ev, err := q.LockEvent(ctx, tt.EventID)
		if err != nil {
			return storeErr("lock event", "event", err)
		}
		if tt, err = q.GetTicketType(ctx, ticketTypeID); err != nil {
			return storeErr("get ticket type", "ticket type", err)
		}

		if patch.Name != nil {
			tt.Name = *patch.Name
		}
		if patch.PriceCents != nil {
			tt.PriceCents = *patch.PriceCents
		}
		if err := validateTicketFields(tt.Name, tt.PriceCents); err != nil {
			return err
		}
		if patch.SeatLimit != nil {
			if err := checkSeatLimitUpdate(ctx, q, ev, tt.ID, *patch.SeatLimit); err != nil {
				return err
			}
			tt.SeatLimit = *patch.SeatLimit
		}

		if err := q.UpdateTicketType(ctx, tt); err != nil {
			return storeErr("update ticket type", "ticket type", err)
		}
		updated = tt
		return nil
	})
	if err != nil {
		return nil, storeErr("update ticket type", "ticket type", err)
	}

	a.log.Info("ALLOCATOR", fmt.Sprintf("ticket type %s updated: seat limit %d", updated.ID, updated.SeatLimit))
	return updated, nil
}

// DeleteTicketType removes a ticket type and its bookings under the event
// lock, so no admission for it can be in flight.
func (a *Allocator) DeleteTicketType(ctx context.Context, ticketTypeID string) error {
	err := a.store.WithTx(ctx, func(q repository.Querier) error {
		tt, err := q.GetTicketType(ctx, ticketTypeID)
		if err != nil {
			return storeErr("get ticket type", "ticket type", err)
		}
		if _, err := q.LockEvent(ctx, tt.EventID); err != nil {
			return storeErr("lock event", "event", err)
		}
		if err := q.DeleteTicketType(ctx, ticketTypeID); err != nil {
			return storeErr("delete ticket type", "ticket type", err)
		}
		return nil
	})
	if err != nil {
		return storeErr("delete ticket type", "ticket type", err)
	}
	a.log.Info("ALLOCATOR", "ticket type "+ticketTypeID+" deleted")
	return nil
}

// checkNewSeatLimit applies the local and aggregate checks for a new
// ticket type. Unlimited events only need a positive seat limit.
func checkNewSeatLimit(ctx context.Context, q repository.Querier, ev *model.Event, seatLimit int) error {
	return checkSeatLimitUpdate(ctx, q, ev, "", seatLimit)
}

// checkSeatLimitUpdate is checkNewSeatLimit with the ticket type selfID
// left out of the existing total.
func checkSeatLimitUpdate(ctx context.Context, q repository.Querier, ev *model.Event, selfID string, seatLimit int) error {
	if seatLimit <= 0 {
		return invalid("seat limit must be a positive integer")
	}
	if seatLimit > MaxCount {
		return invalid("seat limit must not exceed %d", MaxCount)
	}
	if ev.Unlimited() {
		return nil
	}
	capacity := *ev.Capacity
	if seatLimit > capacity {
		return invalid("ticket seat limit cannot exceed event capacity (%d)", capacity)
	}

	others, err := seatLimitTotal(ctx, q, ev.ID, selfID)
	if err != nil {
		return err
	}
	if seatLimit > capacity-others {
		return invalid("total ticket seat limits exceed event capacity, seatLimit left: %d", capacity-others)
	}
	return nil
}

// seatLimitTotal sums seat limits of the event's ticket types except
// excludeID.
func seatLimitTotal(ctx context.Context, q repository.Querier, eventID, excludeID string) (int, error) {
	tts, err := q.ListTicketTypes(ctx, eventID)
	if err != nil {
		return 0, storeErr("list ticket types", "event", err)
	}
	total := 0
	for _, t := range tts {
		if t.ID != excludeID {
			total += t.SeatLimit
		}
	}
	return total, nil
}

func validateTicketFields(name model.TicketName, priceCents int64) error {
	if !name.Valid() {
		return invalid("ticket name must be one of %s, %s, %s",
			model.TicketRegular, model.TicketVIP, model.TicketEarlyBird)
	}
	if priceCents < 0 {
		return invalid("price must not be negative")
	}
	return nil
}
