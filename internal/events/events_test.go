package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:              "b-1",
		UserID:          "u-1",
		TicketTypeID:    "tt-1",
		EventID:         "e-1",
		Quantity:        2,
		TotalPriceCents: 1000,
		Status:          model.BookingConfirmed,
	}
}

func TestNewBookingEvent(t *testing.T) {
	ev := NewBookingEvent(TypeBookingConfirmed, sampleBooking())

	assert.Equal(t, TypeBookingConfirmed, ev.Type)
	assert.Equal(t, "b-1", ev.BookingID)
	assert.Equal(t, "e-1", ev.EventID)
	assert.Equal(t, int64(1000), ev.TotalPriceCents)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestKafkaPublisherSendsKeyedMessage(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "booking-events" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "e-1" {
			return errors.New("wrong key " + string(key))
		}
		value, _ := msg.Value.Encode()
		var ev BookingEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		if ev.Type != TypeBookingConfirmed || ev.Quantity != 2 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := newKafkaPublisher(producer, "booking-events", logger.Nop())
	err := p.PublishBooking(context.Background(), NewBookingEvent(TypeBookingConfirmed, sampleBooking()))
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublisherSurfacesSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newKafkaPublisher(producer, "booking-events", logger.Nop())
	err := p.PublishBooking(context.Background(), NewBookingEvent(TypeBookingCancelled, sampleBooking()))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewSelectsBackend(t *testing.T) {
	p, err := New(config.EventsConfig{Backend: config.EventsNone}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Nop{}, p)
	assert.NoError(t, p.PublishBooking(context.Background(), BookingEvent{Type: TypeBookingConfirmed}))

	_, err = New(config.EventsConfig{Backend: "nats"}, logger.Nop())
	assert.Error(t, err)
}

func TestRabbitPublisher(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL not set")
	}

	p, err := NewRabbitPublisher(url, "booking.test.exchange", logger.Nop())
	require.NoError(t, err)
	defer p.Close()

	err = p.PublishBooking(context.Background(), NewBookingEvent(TypeBookingConfirmed, sampleBooking()))
	assert.NoError(t, err)
}
