package events

import (
	"context"
	"fmt"

	"roombook/pkg/kafka"
)

const (
	eventSource   = "roombook"
	schemaVersion = "1"
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by room so that events
// about one room stay ordered.
type KafkaPublisher struct {
	producer producer
}

func NewKafkaPublisher(p *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (k *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := kafka.NewMessage().
		WithKey(e.Key()).
		WithValue(e).
		WithEventID(e.ID.String()).
		WithEventType(string(e.Type)).
		WithSchemaVersion(schemaVersion).
		WithSource(eventSource).
		WithTimestamp(e.At).
		Build()
	if err != nil {
		return err
	}

	if err := k.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", e.Type, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
