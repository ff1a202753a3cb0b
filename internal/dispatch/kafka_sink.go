package dispatch

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes intents to one topic keyed by campaign, so the
// intents of a campaign stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
	topic  string
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

func (s *KafkaSink) Send(ctx context.Context, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("encode intent: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topic,
		Key:   []byte(intent.CampaignID),
		Value: payload,
		Time:  intent.CreatedAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(intent.Kind)},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
