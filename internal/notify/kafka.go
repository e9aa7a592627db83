package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/guttosm/dipwatch/internal/domain/models"
)

// MessageWriter is the part of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka publishes the notification as one JSON message keyed by run date.
// A downstream mailer owns the actual delivery.
type Kafka struct {
	writer MessageWriter
}

// NewKafka constructs a Kafka notifier over writer (see NewKafkaWriter).
func NewKafka(writer MessageWriter) *Kafka {
	return &Kafka{writer: writer}
}

// NewKafkaWriter builds the production writer for brokers/topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// Notify publishes n as JSON, keyed by n.Date so one day's reports share a partition.
//
// Returns:
//   - error: when the notification cannot be encoded or the write fails.
func (k *Kafka) Notify(ctx context.Context, n models.Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("kafka marshal: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Date),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}
