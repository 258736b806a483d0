package bootstrap

import (
	"context"
	"fmt"

	"salesdash/internal/config"
	"salesdash/internal/logger"
	"salesdash/internal/notify"
)

// Base holds what every entry point needs: config, logger and the event producer.
type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer notify.Producer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the producer. A config without broker type yields a no-op producer.
func (b *Base) InitBroker() error {
	producer, err := notify.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer
	return nil
}

func (b *Base) Notifier() *notify.Notifier {
	kafka := b.Config.Broker.Kafka
	return notify.NewNotifier(b.Producer, kafka.AlertTopic, kafka.RuleChangesTopic, b.Logger)
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.InfowCtx(ctx, "Shutting down application")

	var errs []error
	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.InfowCtx(ctx, "Application exited successfully")
	return nil
}
