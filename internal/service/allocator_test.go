package service

import (
	"context"
	"math"
	"testing"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatLimitSum(t *testing.T, f *fixture, eventID string) int {
	t.Helper()
	tts, err := f.store.ListTicketTypes(context.Background(), eventID)
	require.NoError(t, err)
	sum := 0
	for _, tt := range tts {
		sum += tt.SeatLimit
	}
	return sum
}

func TestAllocatorRejectsOverAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, intPtr(20))
	f.ticketType(t, ev.ID, 10, 100)
	f.ticketType(t, ev.ID, 10, 100)

	_, err := f.svc.CreateTicketType(ctx, organizer, ev.ID, model.CreateTicketTypeRequest{
		Name: model.TicketVIP, PriceCents: 500, SeatLimit: 1,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "seatLimit left: 0")
	assert.Equal(t, 20, seatLimitSum(t, f, ev.ID))
}

func TestAllocatorLocalCheck(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, intPtr(10))
	a := NewAllocator(f.store, logger.Nop())

	err := a.ValidateNewTicketType(context.Background(), ev.ID, 11)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "cannot exceed event capacity")

	assert.NoError(t, a.ValidateNewTicketType(context.Background(), ev.ID, 10))
}

func TestAllocatorValidateNewIsAdvisory(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, intPtr(10))
	a := NewAllocator(f.store, logger.Nop())

	require.NoError(t, a.ValidateNewTicketType(context.Background(), ev.ID, 4))
	tts, err := f.store.ListTicketTypes(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Empty(t, tts)
}

func TestAllocatorUpdateExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, intPtr(20))
	a := f.ticketType(t, ev.ID, 10, 100)
	f.ticketType(t, ev.ID, 5, 100)
	alloc := NewAllocator(f.store, logger.Nop())

	assert.NoError(t, alloc.ValidateTicketTypeUpdate(ctx, a.ID, 15))
	err := alloc.ValidateTicketTypeUpdate(ctx, a.ID, 16)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "seatLimit left: 15")

	updated, err := f.svc.UpdateTicketTypeSeatLimit(ctx, organizer, a.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.SeatLimit)
	assert.Equal(t, 20, seatLimitSum(t, f, ev.ID))

	_, err = f.svc.UpdateTicketTypeSeatLimit(ctx, organizer, a.ID, 16)
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.store.GetTicketType(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.SeatLimit)
}

func TestAllocatorSeatLimitMustBePositive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, capacity := range []*int{intPtr(10), nil} {
		ev := f.event(t, capacity)
		for _, limit := range []int{0, -3} {
			_, err := f.svc.CreateTicketType(ctx, organizer, ev.ID, model.CreateTicketTypeRequest{
				Name: model.TicketRegular, SeatLimit: limit,
			})
			assert.ErrorIs(t, err, ErrValidation)
		}
	}
}

func TestAllocatorSeatLimitOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, capacity := range []*int{intPtr(MaxCount), nil} {
		ev := f.event(t, capacity)
		for _, limit := range []int{MaxCount + 1, math.MaxInt} {
			_, err := f.svc.CreateTicketType(ctx, organizer, ev.ID, model.CreateTicketTypeRequest{
				Name: model.TicketRegular, SeatLimit: limit,
			})
			assert.ErrorIs(t, err, ErrValidation)
		}
	}

	// Headroom comparison with a nearly full event.
	ev := f.event(t, intPtr(MaxCount))
	f.ticketType(t, ev.ID, MaxCount-1, 100)
	err := NewAllocator(f.store, logger.Nop()).ValidateNewTicketType(ctx, ev.ID, MaxCount)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "seatLimit left: 1")

	_, err = f.svc.UpdateEventCapacity(ctx, organizer, ev.ID, intPtr(MaxCount+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAllocatorUnlimitedEventSkipsCapacityChecks(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, nil)

	f.ticketType(t, ev.ID, 100000, 100)
	f.ticketType(t, ev.ID, 100000, 100)
	assert.Equal(t, 200000, seatLimitSum(t, f, ev.ID))
}

func TestAllocatorFieldValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, intPtr(10))

	_, err := f.svc.CreateTicketType(ctx, organizer, ev.ID, model.CreateTicketTypeRequest{
		Name: "balcony", SeatLimit: 1,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateTicketType(ctx, organizer, ev.ID, model.CreateTicketTypeRequest{
		Name: model.TicketVIP, PriceCents: -1, SeatLimit: 1,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAllocatorPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, intPtr(10))
	tt := f.ticketType(t, ev.ID, 4, 100)

	vip := model.TicketVIP
	price := int64(2500)
	updated, err := f.svc.UpdateTicketType(ctx, organizer, tt.ID, model.UpdateTicketTypeRequest{
		Name: &vip, PriceCents: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TicketVIP, updated.Name)
	assert.Equal(t, int64(2500), updated.PriceCents)
	assert.Equal(t, 4, updated.SeatLimit)
}

func TestAllocatorUnknownTargets(t *testing.T) {
	f := newFixture(t)
	a := NewAllocator(f.store, logger.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, a.ValidateNewTicketType(ctx, "missing", 1), ErrNotFound)
	assert.ErrorIs(t, a.ValidateTicketTypeUpdate(ctx, "missing", 1), ErrNotFound)

	_, err := a.CreateTicketType(ctx, "missing", model.CreateTicketTypeRequest{Name: model.TicketRegular, SeatLimit: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllocatorInvariantHoldsUnderRandomUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, intPtr(30))
	ids := []string{
		f.ticketType(t, ev.ID, 10, 100).ID,
		f.ticketType(t, ev.ID, 10, 100).ID,
	}

	limits := []int{25, 5, 15, 20, 1, 30, 12, 18}
	for i, limit := range limits {
		_, _ = f.svc.UpdateTicketTypeSeatLimit(ctx, organizer, ids[i%2], limit)
		_, _ = f.svc.CreateTicketType(ctx, organizer, ev.ID, model.CreateTicketTypeRequest{
			Name: model.TicketEarlyBird, SeatLimit: limit / 3,
		})
		assert.LessOrEqual(t, seatLimitSum(t, f, ev.ID), 30)
	}
}
