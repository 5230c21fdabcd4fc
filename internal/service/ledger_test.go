package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerZeroWithoutBookings(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, intPtr(10))
	tt := f.ticketType(t, ev.ID, 5, 100)
	ledger := NewLedger(f.store)
	ctx := context.Background()

	n, err := ledger.BookedQuantityForTicketType(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = ledger.BookedQuantityForEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = ledger.BookedQuantityForTicketType(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLedgerSumsAcrossTicketTypes(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, intPtr(20))
	a := f.ticketType(t, ev.ID, 10, 100)
	b := f.ticketType(t, ev.ID, 10, 200)

	_, err := f.book(ev.ID, a.ID, 3)
	require.NoError(t, err)
	_, err = f.book(ev.ID, b.ID, 4)
	require.NoError(t, err)

	ledger := NewLedger(f.store)
	ctx := context.Background()

	n, err := ledger.BookedQuantityForTicketType(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ledger.BookedQuantityForEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	seats, err := ledger.RemainingSeats(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, seats)

	remaining, err := ledger.RemainingCapacity(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, 13, *remaining)
}

func TestLedgerIgnoresCancelledBookings(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, intPtr(10))
	tt := f.ticketType(t, ev.ID, 10, 100)

	b, err := f.book(ev.ID, tt.ID, 4)
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(context.Background(), attendee, b.ID)
	require.NoError(t, err)

	n, err := NewLedger(f.store).BookedQuantityForEvent(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRemainingCapacityUnlimited(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, nil)

	remaining, err := f.svc.GetRemainingCapacity(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestRemainingReadsAreIdempotent(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, intPtr(10))
	tt := f.ticketType(t, ev.ID, 6, 100)
	_, err := f.book(ev.ID, tt.ID, 2)
	require.NoError(t, err)
	ctx := context.Background()

	seats1, err := f.svc.GetRemainingSeats(ctx, tt.ID)
	require.NoError(t, err)
	seats2, err := f.svc.GetRemainingSeats(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, seats1, seats2)
	assert.Equal(t, 4, seats1)

	cap1, err := f.svc.GetRemainingCapacity(ctx, ev.ID)
	require.NoError(t, err)
	cap2, err := f.svc.GetRemainingCapacity(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, *cap1, *cap2)
	assert.Equal(t, 8, *cap1)
}

func TestRemainingNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetRemainingSeats(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetRemainingCapacity(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
