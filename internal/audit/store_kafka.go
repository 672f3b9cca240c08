package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"kycgate/internal/platform/kafka/consumer"
	"kycgate/internal/platform/kafka/producer"
)

// Producer publishes a Kafka message. Satisfied by producer.Producer.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaStore publishes events as JSON to a topic, keyed by event ID.
type KafkaStore struct {
	producer Producer
	topic    string
}

// NewKafkaStore creates a store writing to topic.
func NewKafkaStore(p Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.ID),
		Value: value,
		Headers: map[string]string{
			"event_type": string(event.Type),
			"request_id": event.RequestID,
		},
	})
}

// Decode turns a consumed audit message back into an Event. A missing ID is
// taken from the message key.
func Decode(msg *consumer.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return Event{}, fmt.Errorf("decode audit event at offset %d: %w", msg.Offset, err)
	}
	if event.ID == "" {
		event.ID = string(msg.Key)
	}
	if event.Type == "" {
		event.Type = EventType(msg.Headers["event_type"])
	}
	return event, nil
}
