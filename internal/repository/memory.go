package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/google/uuid"
)

type memState struct {
	events      map[string]model.Event
	ticketTypes map[string]model.TicketType
	bookings    map[string]model.Booking
	seq         uint64
	order       map[string]uint64
}

func (s *memState) clone() *memState {
	c := &memState{
		events:      make(map[string]model.Event, len(s.events)),
		ticketTypes: make(map[string]model.TicketType, len(s.ticketTypes)),
		bookings:    make(map[string]model.Booking, len(s.bookings)),
		seq:         s.seq,
		order:       make(map[string]uint64, len(s.order)),
	}
	for k, v := range s.events {
		c.events[k] = copyEvent(v)
	}
	for k, v := range s.ticketTypes {
		c.ticketTypes[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.order {
		c.order[k] = v
	}
	return c
}

// copyEvent detaches Capacity so callers never share it with stored state.
func copyEvent(e model.Event) model.Event {
	if e.Capacity != nil {
		c := *e.Capacity
		e.Capacity = &c
	}
	return e
}

// MemoryStore is an in-process Store. Transactions are serialized by a
// single mutex, which also stands in for LockEvent's row lock, and a failed
// transaction restores the snapshot taken when it began.
type MemoryStore struct {
	*memQueries
	txMu sync.Mutex
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memQueries: &memQueries{state: &memState{
		events:      map[string]model.Event{},
		ticketTypes: map[string]model.TicketType{},
		bookings:    map[string]model.Booking{},
		order:       map[string]uint64{},
	}}}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(q Querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(s.memQueries); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() {}

// Writes made outside WithTx still go through the transaction mutex so a
// concurrent rollback cannot discard them.

func (s *MemoryStore) InsertEvent(ctx context.Context, e *model.Event) error {
	return s.WithTx(ctx, func(q Querier) error { return q.InsertEvent(ctx, e) })
}

func (s *MemoryStore) UpdateEventCapacity(ctx context.Context, id string, capacity *int) error {
	return s.WithTx(ctx, func(q Querier) error { return q.UpdateEventCapacity(ctx, id, capacity) })
}

func (s *MemoryStore) DeleteEvent(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(q Querier) error { return q.DeleteEvent(ctx, id) })
}

func (s *MemoryStore) InsertTicketType(ctx context.Context, tt *model.TicketType) error {
	return s.WithTx(ctx, func(q Querier) error { return q.InsertTicketType(ctx, tt) })
}

func (s *MemoryStore) UpdateTicketType(ctx context.Context, tt *model.TicketType) error {
	return s.WithTx(ctx, func(q Querier) error { return q.UpdateTicketType(ctx, tt) })
}

func (s *MemoryStore) DeleteTicketType(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(q Querier) error { return q.DeleteTicketType(ctx, id) })
}

func (s *MemoryStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	return s.WithTx(ctx, func(q Querier) error { return q.InsertBooking(ctx, b) })
}

func (s *MemoryStore) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	return s.WithTx(ctx, func(q Querier) error { return q.UpdateBookingStatus(ctx, id, status) })
}

type memQueries struct {
	mu    sync.RWMutex
	state *memState
}

func (q *memQueries) next(id string) {
	q.state.seq++
	q.state.order[id] = q.state.seq
}

func (q *memQueries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	e, ok := q.state.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e = copyEvent(e)
	return &e, nil
}

// LockEvent is GetEvent: the caller already holds the transaction mutex.
func (q *memQueries) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	return q.GetEvent(ctx, id)
}

func (q *memQueries) ListEvents(ctx context.Context) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	var events []model.Event
	for _, e := range q.state.events {
		if !e.IsBlocked {
			events = append(events, copyEvent(e))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartDateTime.Equal(events[j].StartDateTime) {
			return events[i].StartDateTime.Before(events[j].StartDateTime)
		}
		return q.state.order[events[i].ID] < q.state.order[events[j].ID]
	})
	return events, nil
}

func (q *memQueries) InsertEvent(ctx context.Context, e *model.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()
	q.state.events[e.ID] = copyEvent(*e)
	q.next(e.ID)
	return nil
}

func (q *memQueries) UpdateEventCapacity(ctx context.Context, id string, capacity *int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.state.events[id]
	if !ok {
		return ErrNotFound
	}
	e.Capacity = capacity
	q.state.events[id] = copyEvent(e)
	return nil
}

func (q *memQueries) DeleteEvent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.state.events[id]; !ok {
		return ErrNotFound
	}
	delete(q.state.events, id)
	for ttID, tt := range q.state.ticketTypes {
		if tt.EventID == id {
			q.deleteTicketTypeLocked(ttID)
		}
	}
	return nil
}

func (q *memQueries) GetTicketType(ctx context.Context, id string) (*model.TicketType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	tt, ok := q.state.ticketTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tt, nil
}

func (q *memQueries) ListTicketTypes(ctx context.Context, eventID string) ([]model.TicketType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	var tts []model.TicketType
	for _, tt := range q.state.ticketTypes {
		if tt.EventID == eventID {
			tts = append(tts, tt)
		}
	}
	sort.Slice(tts, func(i, j int) bool {
		return q.state.order[tts[i].ID] < q.state.order[tts[j].ID]
	})
	return tts, nil
}

func (q *memQueries) InsertTicketType(ctx context.Context, tt *model.TicketType) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.state.events[tt.EventID]; !ok {
		return ErrNotFound
	}
	if tt.ID == "" {
		tt.ID = uuid.New().String()
	}
	tt.CreatedAt = time.Now().UTC()
	q.state.ticketTypes[tt.ID] = *tt
	q.next(tt.ID)
	return nil
}

func (q *memQueries) UpdateTicketType(ctx context.Context, tt *model.TicketType) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cur, ok := q.state.ticketTypes[tt.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = tt.Name
	cur.PriceCents = tt.PriceCents
	cur.SeatLimit = tt.SeatLimit
	q.state.ticketTypes[tt.ID] = cur
	return nil
}

func (q *memQueries) DeleteTicketType(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.state.ticketTypes[id]; !ok {
		return ErrNotFound
	}
	q.deleteTicketTypeLocked(id)
	return nil
}

func (q *memQueries) deleteTicketTypeLocked(id string) {
	delete(q.state.ticketTypes, id)
	delete(q.state.order, id)
	for bID, b := range q.state.bookings {
		if b.TicketTypeID == id {
			delete(q.state.bookings, bID)
			delete(q.state.order, bID)
		}
	}
}

func (q *memQueries) SumConfirmedByTicketType(ctx context.Context, ticketTypeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	sum := 0
	for _, b := range q.state.bookings {
		if b.TicketTypeID == ticketTypeID && b.Status == model.BookingConfirmed {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (q *memQueries) SumConfirmedByEvent(ctx context.Context, eventID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	sum := 0
	for _, b := range q.state.bookings {
		tt, ok := q.state.ticketTypes[b.TicketTypeID]
		if ok && tt.EventID == eventID && b.Status == model.BookingConfirmed {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (q *memQueries) InsertBooking(ctx context.Context, b *model.Booking) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	tt, ok := q.state.ticketTypes[b.TicketTypeID]
	if !ok {
		return ErrNotFound
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.EventID = tt.EventID
	b.CreatedAt = time.Now().UTC()
	q.state.bookings[b.ID] = *b
	q.next(b.ID)
	return nil
}

func (q *memQueries) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	b, ok := q.state.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (q *memQueries) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.state.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	q.state.bookings[id] = b
	return nil
}

func (q *memQueries) ListBookingsByEvent(ctx context.Context, eventID string) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	var bookings []model.Booking
	for _, b := range q.state.bookings {
		if b.EventID == eventID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return q.state.order[bookings[i].ID] < q.state.order[bookings[j].ID]
	})
	return bookings, nil
}
