package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
	"github.com/google/uuid"
)

// OutboxRepository writes events to outbox_events. Call Enqueue inside
// WithinTransaction so the event commits with the state change.
type OutboxRepository struct {
	*SQLRepository
}

var _ ports.OutboxWriter = (*OutboxRepository)(nil)

func NewOutboxRepository(base *SQLRepository) *OutboxRepository {
	return &OutboxRepository{SQLRepository: base}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	return r.guard(func() error {
		_, err := r.conn(ctx).ExecContext(ctx,
			`INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)`,
			uuid.NewString(), eventType, string(body),
		)
		return err
	})
}
