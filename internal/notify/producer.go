package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"

	"salesdash/internal/config"
	"salesdash/internal/constants"
	"salesdash/internal/logger"
	"salesdash/pkg/metrics"
	"salesdash/pkg/models"
	"salesdash/pkg/retry"
	"salesdash/pkg/tracing"
)

const headerEventType = "event_type"

type Producer interface {
	Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
	policy retry.Policy
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(w, retryPolicy(cfg.Retry), log)
}

func newKafkaProducer(w messageWriter, policy retry.Policy, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, policy: policy, logger: log}
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	return retry.Policy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
		Multiplier:      cfg.Multiplier,
		MaxElapsedTime:  cfg.MaxElapsedTime,
	}
}

// Publish writes msg keyed by its id. Transient write failures are retried
// per the configured policy.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	ctx, span := tracing.StartProducerSpan(ctx, topic)
	defer span.End()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, []kafka.Header{
		{Key: headerEventType, Value: []byte(msg.EventType)},
	})

	start := time.Now()
	err = retry.DoWithCallback(ctx, "kafka_publish", p.policy, func() error {
		return p.writer.WriteMessages(ctx, kafka.Message{
			Topic:   topic,
			Key:     []byte(msg.ID),
			Value:   body,
			Headers: headers,
			Time:    msg.Timestamp,
		})
	}, func(attempt int, err error, next time.Duration) {
		p.logger.WarnwCtx(ctx, "Kafka write failed, retrying",
			"topic", topic,
			"attempt", attempt,
			"next_retry", next,
			"error", err,
		)
	})
	metrics.ObserveKafkaWriteDuration(topic, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		metrics.IncNotificationPublished(msg.EventType, "error")
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncNotificationPublished(msg.EventType, "success")
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopProducer drops every message. Used when no broker is configured.
type NopProducer struct{}

func (NopProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	return nil
}

func (NopProducer) Close() error { return nil }

func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "":
		return NopProducer{}, nil
	case "kafka":
		return NewKafkaProducer(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
