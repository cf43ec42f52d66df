package repository

import (
	"context"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	pkgkafka "MacroPulse/pkg/kafka"
)

// KafkaSeriesPublisher implements SeriesPublisher on a Kafka topic. Messages
// are keyed by indicator so one indicator's rows stay ordered per partition.
type KafkaSeriesPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSeriesPublisher(producer *pkgkafka.Producer, topic string) drepo.SeriesPublisher {
	return &KafkaSeriesPublisher{producer: producer, topic: topic}
}

func (p *KafkaSeriesPublisher) PublishAligned(ctx context.Context, rows []models.AlignedRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(r.Indicator),
			Value: map[string]interface{}{
				"indicator": r.Indicator,
				"column":    r.Column,
				"datetime":  r.At.UTC().Format(time.RFC3339),
				"value":     r.Value,
			},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSeriesPublisher) Close() error {
	return p.producer.Close()
}
