package event

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// KafkaPublisher writes domain events as JSON. Order-created messages
// are keyed by order number, low-stock warnings by SKU id, so messages
// for the same entity land on the same partition.
type KafkaPublisher struct {
	writer        *kafka.Writer
	orderTopic    string
	lowStockTopic string
}

func NewKafkaPublisher(brokers []string, orderTopic, lowStockTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
		orderTopic:    orderTopic,
		lowStockTopic: lowStockTopic,
	}
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error {
	return p.publish(ctx, p.orderTopic, event.OrderNo, event)
}

func (p *KafkaPublisher) PublishLowStock(ctx context.Context, event domain.LowStockWarning) error {
	return p.publish(ctx, p.lowStockTopic, strconv.FormatInt(event.SkuID, 10), event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}
