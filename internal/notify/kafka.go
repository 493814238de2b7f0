package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "orders-paid"

// KafkaPublisher publishes an OrderPaidEvent per order, keyed by reference.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) NotifyOrderPaid(ctx context.Context, order *domain.CheckoutOrder) error {
	payload, err := json.Marshal(OrderPaidEvent{Type: EventOrderPaid, Order: *order})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.Reference),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPaid)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
