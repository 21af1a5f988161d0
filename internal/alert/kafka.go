package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client used for publishing.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher writes alerts as JSON records keyed by tenant, so alerts of
// one tenant stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(producer Producer, topic string) (*KafkaPublisher, error) {
	if producer == nil {
		return nil, errors.New("kafka producer is required")
	}
	if topic == "" {
		return nil, errors.New("alerts topic is required")
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, a Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(a.TenantID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "alert_type", Value: []byte(a.Type)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce alert: %w", err)
	}
	return nil
}
