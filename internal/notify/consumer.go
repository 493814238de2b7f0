package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Consumer reads order events and hands them to a Notifier (usually email).
type Consumer struct {
	reader   *kafka.Reader
	notifier Notifier
	log      *zap.Logger
}

func NewConsumer(notifier Notifier, log *zap.Logger, topic, groupID string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, notifier: notifier, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.log.Error("error reading message", zap.Error(err))
			continue
		}
		if err := c.handleMessage(ctx, m); err != nil {
			c.log.Warn("order event not delivered",
				zap.String("key", string(m.Key)),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, m kafka.Message) error {
	var event OrderPaidEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("parse event: %w", err)
	}
	if event.Type != EventOrderPaid {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
	if event.Order.Reference == "" {
		return fmt.Errorf("event without reference")
	}

	if err := c.notifier.NotifyOrderPaid(ctx, &event.Order); err != nil {
		return err
	}
	c.log.Info("operator notified", zap.String("reference", event.Order.Reference))
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
