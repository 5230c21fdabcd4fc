package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgQueries struct {
	db dbtx
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	*pgQueries
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{pgQueries: &pgQueries{db: pool}, pool: pool, log: log}
}

// WithTx runs fn inside a READ COMMITTED transaction. Serialization of
// capacity decisions comes from LockEvent's SELECT ... FOR UPDATE, not from
// the isolation level.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(q Querier) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&pgQueries{db: tx})
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() {
	s.log.LogDatabase("CLOSE", "pool", "closing connection pool")
	s.pool.Close()
}

const eventColumns = `id, organizer_id, title, description, location, category,
	capacity, is_blocked, start_date_time, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location,
		&e.Category, &e.Capacity, &e.IsBlocked, &e.StartDateTime, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (q *pgQueries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "get event")
	}
	return e, nil
}

// LockEvent acquires an exclusive row-level lock on the event. Any other
// transaction doing the same blocks until this one commits or rolls back,
// so read-check-write sequences on one event run one at a time.
func (q *pgQueries) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFoundOr(err, "lock event row")
	}
	return e, nil
}

// ListEvents returns unblocked events, soonest first.
func (q *pgQueries) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE is_blocked = FALSE
		 ORDER BY start_date_time ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (q *pgQueries) InsertEvent(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()
	_, err := q.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Location, e.Category,
		e.Capacity, e.IsBlocked, e.StartDateTime, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (q *pgQueries) UpdateEventCapacity(ctx context.Context, id string, capacity *int) error {
	tag, err := q.db.Exec(ctx, `UPDATE events SET capacity = $2 WHERE id = $1`, id, capacity)
	if err != nil {
		return fmt.Errorf("update event capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event; ticket types and bookings go with it via
// ON DELETE CASCADE.
func (q *pgQueries) DeleteEvent(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const ticketTypeColumns = `id, event_id, name, price_cents, seat_limit, created_at`

func scanTicketType(row pgx.Row) (*model.TicketType, error) {
	var tt model.TicketType
	if err := row.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.SeatLimit, &tt.CreatedAt); err != nil {
		return nil, err
	}
	return &tt, nil
}

func (q *pgQueries) GetTicketType(ctx context.Context, id string) (*model.TicketType, error) {
	tt, err := scanTicketType(q.db.QueryRow(ctx,
		`SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "get ticket type")
	}
	return tt, nil
}

func (q *pgQueries) ListTicketTypes(ctx context.Context, eventID string) ([]model.TicketType, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+ticketTypeColumns+`
		 FROM ticket_types
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var tts []model.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		tts = append(tts, *tt)
	}
	return tts, rows.Err()
}

func (q *pgQueries) InsertTicketType(ctx context.Context, tt *model.TicketType) error {
	if tt.ID == "" {
		tt.ID = uuid.New().String()
	}
	tt.CreatedAt = time.Now().UTC()
	_, err := q.db.Exec(ctx,
		`INSERT INTO ticket_types (`+ticketTypeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tt.ID, tt.EventID, tt.Name, tt.PriceCents, tt.SeatLimit, tt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket type: %w", err)
	}
	return nil
}

func (q *pgQueries) UpdateTicketType(ctx context.Context, tt *model.TicketType) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE ticket_types SET name = $2, price_cents = $3, seat_limit = $4 WHERE id = $1`,
		tt.ID, tt.Name, tt.PriceCents, tt.SeatLimit,
	)
	if err != nil {
		return fmt.Errorf("update ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *pgQueries) DeleteTicketType(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM ticket_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *pgQueries) SumConfirmedByTicketType(ctx context.Context, ticketTypeID string) (int, error) {
	var sum int64
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM bookings
		 WHERE ticket_type_id = $1 AND status = $2`,
		ticketTypeID, model.BookingConfirmed,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum bookings by ticket type: %w", err)
	}
	return int(sum), nil
}

func (q *pgQueries) SumConfirmedByEvent(ctx context.Context, eventID string) (int, error) {
	var sum int64
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(b.quantity), 0)
		 FROM bookings b
		 JOIN ticket_types t ON t.id = b.ticket_type_id
		 WHERE t.event_id = $1 AND b.status = $2`,
		eventID, model.BookingConfirmed,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum bookings by event: %w", err)
	}
	return int(sum), nil
}

func (q *pgQueries) InsertBooking(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()
	_, err := q.db.Exec(ctx,
		`INSERT INTO bookings (id, user_id, ticket_type_id, quantity, total_price_cents, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.UserID, b.TicketTypeID, b.Quantity, b.TotalPriceCents, b.Status, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

const bookingSelect = `SELECT b.id, b.user_id, b.ticket_type_id, t.event_id, b.quantity,
	b.total_price_cents, b.status, b.created_at
	FROM bookings b
	JOIN ticket_types t ON t.id = b.ticket_type_id`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.TicketTypeID, &b.EventID, &b.Quantity,
		&b.TotalPriceCents, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (q *pgQueries) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(q.db.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "get booking")
	}
	return b, nil
}

func (q *pgQueries) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	tag, err := q.db.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *pgQueries) ListBookingsByEvent(ctx context.Context, eventID string) ([]model.Booking, error) {
	rows, err := q.db.Query(ctx,
		bookingSelect+` WHERE t.event_id = $1 ORDER BY b.created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
