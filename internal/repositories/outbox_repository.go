package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

// OutboxRepository stores order events written in the same transaction as the state
// change they describe.
type OutboxRepository interface {
	InsertEvent(ctx context.Context, event *models.OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]*models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type outboxRepository struct {
	DB *sql.DB
}

func NewOutboxRepo(db *sql.DB) OutboxRepository {
	return &outboxRepository{DB: db}
}

func (r *outboxRepository) InsertEvent(ctx context.Context, event *models.OutboxEvent) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	if err := conn(ctx, r.DB).QueryRowContext(dbCtx, query, event.ID, event.AggregateID, event.EventType, []byte(event.Payload)).Scan(&event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return nil
}

func (r *outboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := conn(ctx, r.DB).QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	defer rows.Close()

	var events []*models.OutboxEvent

	for rows.Next() {
		event := &models.OutboxEvent{}

		var payload []byte
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}

		event.Payload = payload
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox events: %w", err)
	}

	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := conn(ctx, r.DB).ExecContext(dbCtx, `UPDATE outbox_events SET published_at = NOW() WHERE id = $1 AND published_at IS NULL`, id)

	return expectOneRow(result, err)
}
