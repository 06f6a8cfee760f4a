package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes events to a Kafka topic, keyed by subject so all
// events for one record land on the same partition in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects a producer to the given brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	}
	return s.client.ProduceSync(ctx, record).FirstErr()
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
