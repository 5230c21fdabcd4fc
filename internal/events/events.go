// Package events publishes booking lifecycle events to a message broker.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// Event types. They double as RabbitMQ routing keys.
const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is the message body for both event types.
type BookingEvent struct {
	Type            string    `json:"type"`
	BookingID       string    `json:"booking_id"`
	EventID         string    `json:"event_id"`
	TicketTypeID    string    `json:"ticket_type_id"`
	UserID          string    `json:"user_id"`
	Quantity        int       `json:"quantity"`
	TotalPriceCents int64     `json:"total_price_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewBookingEvent builds the event for a booking's current state.
func NewBookingEvent(eventType string, b *model.Booking) BookingEvent {
	return BookingEvent{
		Type:            eventType,
		BookingID:       b.ID,
		EventID:         b.EventID,
		TicketTypeID:    b.TicketTypeID,
		UserID:          b.UserID,
		Quantity:        b.Quantity,
		TotalPriceCents: b.TotalPriceCents,
		OccurredAt:      time.Now().UTC(),
	}
}

// Publisher delivers booking events.
type Publisher interface {
	PublishBooking(ctx context.Context, ev BookingEvent) error
	Close() error
}

// New returns the publisher selected by cfg.Backend.
func New(cfg config.EventsConfig, log *logger.Logger) (Publisher, error) {
	switch cfg.Backend {
	case config.EventsRabbitMQ:
		return NewRabbitPublisher(cfg.RabbitURL, cfg.Exchange, log)
	case config.EventsKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	case config.EventsNone, "":
		return NewNop(log), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// Nop logs events at debug level and drops them.
type Nop struct {
	log *logger.Logger
}

func NewNop(log *logger.Logger) *Nop { return &Nop{log: log} }

func (n *Nop) PublishBooking(_ context.Context, ev BookingEvent) error {
	n.log.Debug("EVENTS", fmt.Sprintf("dropped %s for booking %s", ev.Type, ev.BookingID))
	return nil
}

func (n *Nop) Close() error { return nil }
