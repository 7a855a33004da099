package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/config"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// errPublish marks broker failures so they do not count against the database breaker.
var errPublish = errors.New("publish outbox event")

// execer is satisfied by *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Relay listens for PostgreSQL NOTIFY signals on the outbox_channel and publishes the
// referenced outbox events. Delivery is at-least-once: an event is marked processed only
// after the publisher accepted it.
type Relay struct {
	db            *sql.DB
	publisher     ports.EventPublisher
	dbURL         string
	dbCB          *gobreaker.CircuitBreaker
	logger        *zap.Logger
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.EventPublisher, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      config.NewCircuitBreaker("Relay-PostgreSQL", logger, errPublish),
		logger:    logger,
	}
	r.touch()
	r.healthy.Store(true)
	return r
}

func (r *Relay) touch() {
	r.lastProcessed.Store(time.Now().UnixNano())
}

// IsHealthy is the liveness signal: false only while the listener is reconnecting.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady additionally requires a closed database breaker and recent progress.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("outbox listener problem", zap.Error(err))
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return err
	}
	r.logger.Info("outbox relay listening", zap.String("channel", outboxChannelName))

	// catch up on events written while the relay was down
	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.logger.Error("outbox backlog processing failed", zap.Error(err))
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				r.logger.Warn("outbox listener reconnecting")
				r.healthy.Store(false)
				continue
			}

			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.logger.Error("outbox event processing failed",
					zap.String("event_id", notification.Extra), zap.Error(err))
				continue
			}
			r.touch()
			r.healthy.Store(true)

		case <-ticker.C:
			go listener.Ping()

			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.logger.Error("outbox periodic processing failed", zap.Error(err))
			} else {
				r.touch()
			}
		}
	}
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var evt ports.OutboxEvent
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&evt.ID, &evt.EventType, &evt.Payload, &evt.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			// already handled by another relay or the batch pass
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.deliver(ctx, tx, evt); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		var events []ports.OutboxEvent
		for rows.Next() {
			var evt ports.OutboxEvent
			if err := rows.Scan(&evt.ID, &evt.EventType, &evt.Payload, &evt.CreatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			events = append(events, evt)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if err := r.deliverBatch(ctx, tx, events); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

// deliverBatch publishes events in order. A publish failure leaves that event for the
// next pass; a failure to mark an event processed aborts the batch.
func (r *Relay) deliverBatch(ctx context.Context, tx execer, events []ports.OutboxEvent) error {
	for _, evt := range events {
		err := r.deliver(ctx, tx, evt)
		var markErr *markError
		if errors.As(err, &markErr) {
			return err
		}
		if err != nil {
			r.logger.Warn("outbox event publish failed",
				zap.String("event_id", evt.ID), zap.String("event_type", evt.EventType), zap.Error(err))
		}
	}
	return nil
}

type markError struct {
	id  string
	err error
}

func (e *markError) Error() string { return "mark outbox event " + e.id + " processed: " + e.err.Error() }
func (e *markError) Unwrap() error { return e.err }

// deliver publishes one event and marks it processed. An event whose payload is not
// valid JSON is marked processed without publishing so it cannot block the queue.
func (r *Relay) deliver(ctx context.Context, tx execer, evt ports.OutboxEvent) error {
	if !json.Valid(evt.Payload) {
		r.logger.Error("dropping outbox event with invalid payload",
			zap.String("event_id", evt.ID), zap.String("event_type", evt.EventType))
		return markProcessed(ctx, tx, evt.ID)
	}

	if err := r.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("%w %s: %w", errPublish, evt.ID, err)
	}
	if err := markProcessed(ctx, tx, evt.ID); err != nil {
		return err
	}

	r.logger.Debug("outbox event published",
		zap.String("event_id", evt.ID), zap.String("event_type", evt.EventType))
	return nil
}

func markProcessed(ctx context.Context, tx execer, id string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id); err != nil {
		return &markError{id: id, err: err}
	}
	return nil
}
