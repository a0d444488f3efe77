package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the poller needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(cfg config.Kafka) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// OutboxPoller relays committed order events to Kafka. It only reads and marks outbox rows.
type OutboxPoller struct {
	repo      repository.OutboxRepository
	writer    MessageWriter
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewOutboxPoller(repo repository.OutboxRepository, writer MessageWriter, cfg config.Kafka) *OutboxPoller {
	return &OutboxPoller{
		repo:      repo,
		writer:    writer,
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
		logger:    slog.Default().With(slog.String("component", "outbox_poller")),
	}
}

// Run polls until ctx is cancelled, then closes the writer.
func (p *OutboxPoller) Run(ctx context.Context) {

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	defer func() {
		if err := p.writer.Close(); err != nil {
			p.logger.Error("Failed to close kafka writer", slog.Any("error", err))
		}
	}()

	for {
		select {
		case <-ticker.C:
			if _, err := p.PublishPending(ctx); err != nil {
				p.logger.Error("Outbox publish round failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// PublishPending sends one batch in creation order and reports how many were published.
// It stops at the first failure so later events never overtake an earlier one.
func (p *OutboxPoller) PublishPending(ctx context.Context) (int, error) {

	pending, err := p.repo.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch outbox events: %w", err)
	}

	published := 0

	for _, event := range pending {
		if err := p.writer.WriteMessages(ctx, message(event)); err != nil {
			return published, fmt.Errorf("failed to publish event %s: %w", event.ID, err)
		}

		// a failed mark republishes the event next round, consumers dedupe on event_id
		if err := p.repo.MarkPublished(ctx, event.ID); err != nil {
			return published, fmt.Errorf("failed to mark event %s published: %w", event.ID, err)
		}

		published++
	}

	if published > 0 {
		p.logger.Info("Published outbox events", slog.Int("count", published))
	}

	return published, nil
}

func message(event *models.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(event.AggregateID.String()),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.ID.String())},
		},
	}
}
