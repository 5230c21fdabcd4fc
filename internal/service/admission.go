package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/repository"
)

// AdmissionRequest asks for quantity seats of one ticket type.
type AdmissionRequest struct {
	EventID      string
	TicketTypeID string
	UserID       string
	Quantity     int
}

// AdmissionController is the only writer of booking rows.
type AdmissionController struct {
	store repository.Store
	log   *logger.Logger
}

// NewAdmissionController constructs an AdmissionController.
func NewAdmissionController(store repository.Store, log *logger.Logger) *AdmissionController {
	return &AdmissionController{store: store, log: log}
}

// Admit decides a booking request and, if both the ticket type's seat
// limit and the event's capacity have room, records a CONFIRMED booking.
//
// The whole decision runs in one transaction holding the event's row lock,
// so concurrent admissions for the same event are decided one at a time
// against up-to-date totals. Booking exactly up to a limit is allowed.
func (a *AdmissionController) Admit(ctx context.Context, req AdmissionRequest) (*model.Booking, error) {
	if req.Quantity <= 0 {
		return nil, invalid("quantity must be a positive integer")
	}
	if req.Quantity > MaxCount {
		return nil, invalid("quantity must not exceed %d", MaxCount)
	}
	if req.UserID == "" {
		return nil, invalid("user id is required")
	}

	var booking *model.Booking
	err := a.store.WithTx(ctx, func(q repository.Querier) error {
		tt, err := q.GetTicketType(ctx, req.TicketTypeID)
		if err != nil {
			return storeErr("get ticket type", "ticket type", err)
		}
		if tt.EventID != req.EventID {
			return invalid("ticket type does not belong to this event")
		}

		ev, err := q.LockEvent(ctx, req.EventID)
		if err != nil {
			return storeErr("lock event", "event", err)
		}
		// Re-read under the lock: the seat limit may have changed or the
		// ticket type may have been deleted while we waited.
		tt, err = q.GetTicketType(ctx, req.TicketTypeID)
		if err != nil {
			return storeErr("get ticket type", "ticket type", err)
		}

		bookedTT, err := bookedForTicketType(ctx, q, tt.ID)
		if err != nil {
			return err
		}
		// Compare against headroom; sums of large quantities could wrap.
		if req.Quantity > tt.SeatLimit-bookedTT {
			return exceeded("not enough seats available for this ticket type (%d left)",
				max(tt.SeatLimit-bookedTT, 0))
		}

		bookedEvent, err := bookedForEvent(ctx, q, ev.ID)
		if err != nil {
			return err
		}
		if !ev.Unlimited() && req.Quantity > *ev.Capacity-bookedEvent {
			return exceeded("event does not have enough capacity (%d left)",
				max(*ev.Capacity-bookedEvent, 0))
		}

		if tt.PriceCents > 0 && int64(req.Quantity) > math.MaxInt64/tt.PriceCents {
			return invalid("total price is out of range")
		}

		b := &model.Booking{
			UserID:          req.UserID,
			TicketTypeID:    tt.ID,
			EventID:         ev.ID,
			Quantity:        req.Quantity,
			TotalPriceCents: int64(req.Quantity) * tt.PriceCents,
			Status:          model.BookingConfirmed,
		}
		if err := q.InsertBooking(ctx, b); err != nil {
			return storeErr("insert booking", "ticket type", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		err = storeErr("book ticket", "booking", err)
		a.logRejection(req, err)
		return nil, err
	}

	a.log.LogBooking("ADMITTED", booking.ID,
		fmt.Sprintf("user=%s ticket_type=%s quantity=%d total=%d",
			booking.UserID, booking.TicketTypeID, booking.Quantity, booking.TotalPriceCents))
	return booking, nil
}

func (a *AdmissionController) logRejection(req AdmissionRequest, err error) {
	msg := fmt.Sprintf("event=%s ticket_type=%s quantity=%d: %v",
		req.EventID, req.TicketTypeID, req.Quantity, err)
	if isInfrastructure(err) {
		a.log.Error("BOOKING", "admission failed "+msg)
		return
	}
	a.log.Warn("BOOKING", "admission rejected "+msg)
}
