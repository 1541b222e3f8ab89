// Package events publishes order lifecycle events for downstream consumers
// (kitchen displays, reporting).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeOrderSubmitted     = "order.submitted"
	TypeOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"order_id"`
	TableID   int64     `json:"table_id"`
	StaffID   int64     `json:"staff_id"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	Items     int       `json:"items,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(log *zap.Logger, topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(log, w)
}

func NewPublisherWithWriter(log *zap.Logger, w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e OrderEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		// keyed by order so events of one order stay on one partition
		Key:   []byte(strconv.FormatInt(e.OrderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s for order %d: %w", e.Type, e.OrderID, err)
	}
	p.log.Debug("event published", zap.String("type", e.Type), zap.Int64("order_id", e.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
