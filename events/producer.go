package events

import (
	"context"
	"encoding/json"

	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes booking events to a Kafka topic, keyed by order id.
type Producer struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return NewProducerWithWriter(writer, topic, logger)
}

func NewProducerWithWriter(writer MessageWriter, topic string, logger *zap.Logger) *Producer {
	return &Producer{writer: writer, topic: topic, logger: logger}
}

func (p *Producer) PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to send Kafka message",
			zap.String("topic", p.topic),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
