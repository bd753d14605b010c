// Package kafka publishes item change events so downstream consumers (BI
// exports, audit trails) can follow the project timeline without polling.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
)

// Producer wraps a kafka-go writer. Topics are namespaced with the configured
// prefix; the message key is the aggregate ID so per-item ordering holds
// within a partition.
type Producer struct {
	writer *kafkago.Writer
	prefix string
	logger logging.Logger
}

// NewProducer builds a Producer from config. The writer is lazy; broker
// connectivity surfaces on first publish.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxRetries,
		RequiredAcks: kafkago.RequireOne,
	}
	return &Producer{
		writer: writer,
		prefix: cfg.TopicPrefix,
		logger: logger.Named("kafka_producer"),
	}
}

func (p *Producer) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish marshals the payload and writes it to the prefixed topic.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode event payload")
	}

	msg := kafkago.Message{
		Topic: p.topic(topic),
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CodeExternalService, "failed to publish event")
	}

	p.logger.Debug("event published",
		logging.String("topic", p.topic(topic)),
		logging.String("key", key),
	)
	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
