// Package kafka ships mirror events to the global audit aggregator's
// broker. Events are keyed by farm id so the aggregator sees each farm's
// trail in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"cultiva/internal/audit"
)

const DefaultTopic = "registry.audit.v1"

// Producer implements audit.Sink over a Kafka topic.
type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(p *Producer)

func WithTopic(topic string) Option {
	return func(p *Producer) {
		p.topic = topic
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Producer) {
		p.logger = logger
	}
}

// NewProducer connects to the brokers and ensures the topic exists.
func NewProducer(ctx context.Context, brokers []string, opts ...Option) (*Producer, error) {
	p := &Producer{topic: DefaultTopic}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(p.topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	p.client = client

	if err := p.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *Producer) ensureTopic(ctx context.Context) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// Append produces one mirror event synchronously.
func (p *Producer) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal mirror event: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(strconv.FormatUint(uint64(event.FarmID), 10)),
		Value: payload,
		Topic: p.topic,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce mirror event: %w", err)
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
