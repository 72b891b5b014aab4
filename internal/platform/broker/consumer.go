package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	syncdomain "storeAdminWs/internal/modules/sync/domain"
)

// ChangeEvent is the backend's change notification as published to Kafka.
// Only Entity matters for refresh routing; the rest is logged for tracing.
type ChangeEvent struct {
	Entity     string `json:"entity"`
	Action     string `json:"action"`
	ResourceID string `json:"resourceId"`
	Topic      string `json:"topic"`
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			CommitInterval: time.Second,
		}),
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

// Consume reads change events until ctx is cancelled, invoking handler with
// the canonical entity name for each decodable event. Malformed payloads
// fall back to inferring the entity from the Kafka topic name.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(entity string) error) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			continue
		}

		entity := decodeEntity(m)
		if entity == "" {
			slog.Debug("kafka message ignored, no recognizable entity",
				slog.String("topic", m.Topic),
				slog.Int64("offset", m.Offset),
			)
			continue
		}

		slog.Info("kafka change event consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", entity),
		)
		if err := handler(entity); err != nil {
			slog.Warn("kafka handler error", slog.Any("error", err))
		}
	}
}

func decodeEntity(m kafka.Message) string {
	var event ChangeEvent
	if err := json.Unmarshal(m.Value, &event); err == nil {
		if entity := syncdomain.NormalizeEntity(event.Entity); entity != "" {
			return entity
		}
	}
	return entityFromTopic(m.Topic)
}

// entityFromTopic maps topic names like "store.users.updated" or
// "user-events" onto a known entity by scanning dot/dash segments.
func entityFromTopic(topic string) string {
	for _, part := range strings.FieldsFunc(topic, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	}) {
		if entity := syncdomain.NormalizeEntity(part); entity != "" {
			return entity
		}
	}
	return ""
}
