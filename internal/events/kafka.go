package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
)

// KafkaPublisher writes booking events to one topic keyed by event id, so
// all bookings of an event land on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher connects a synchronous producer to brokers.
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	log.LogPublish("CONNECTED", topic, fmt.Sprintf("kafka brokers %v", brokers))
	return newKafkaPublisher(producer, topic, log), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	return cfg
}

func (p *KafkaPublisher) PublishBooking(_ context.Context, ev BookingEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.EventID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(ev.Type)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error("EVENTS", fmt.Sprintf("send to topic %s failed: %v", p.topic, err))
		return fmt.Errorf("send message: %w", err)
	}
	p.log.LogPublish("PUBLISHED", p.topic,
		fmt.Sprintf("%s booking %s at partition %d offset %d", ev.Type, ev.BookingID, partition, offset))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
