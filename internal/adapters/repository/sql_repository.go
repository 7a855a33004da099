package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AchilleasB/coiipa/training-service/internal/config"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type ctxKey struct{}

var txKey = ctxKey{}

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLRepository owns the Postgres handle and the breaker shared by every store.
// It implements ports.Transactor.
type SQLRepository struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var _ ports.Transactor = (*SQLRepository)(nil)

func NewSQLRepository(db *sql.DB, logger *zap.Logger) *SQLRepository {
	return &SQLRepository{
		db: db,
		cb: config.NewCircuitBreaker("PostgreSQL", logger, ports.ErrNotFound, ports.ErrConflict),
	}
}

// WithinTransaction runs fn in a read-committed transaction carried by the context.
// A nested call joins the outer transaction.
func (r *SQLRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	var tx *sql.Tx
	err := r.guard(func() error {
		var err error
		tx, err = r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		return err
	})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

func (r *SQLRepository) conn(ctx context.Context) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return r.db
}

// guard runs fn through the breaker. ErrNotFound and ErrConflict pass through
// without counting as failures.
func (r *SQLRepository) guard(fn func() error) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
