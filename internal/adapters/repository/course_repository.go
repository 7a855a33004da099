package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

type CourseRepository struct {
	*SQLRepository
}

var _ ports.CourseStore = (*CourseRepository)(nil)

func NewCourseRepository(base *SQLRepository) *CourseRepository {
	return &CourseRepository{SQLRepository: base}
}

const courseColumns = `code, title, start_date, seats, state`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (domain.Course, error) {
	var (
		c     domain.Course
		start time.Time
		state string
	)
	if err := row.Scan(&c.Code, &c.Title, &start, &c.Seats, &state); err != nil {
		return domain.Course{}, err
	}
	c.StartDate = domain.DateOf(start)
	c.State = domain.CourseState(state)
	return c, nil
}

func (r *CourseRepository) FindByCode(ctx context.Context, code int) (*domain.Course, error) {
	return r.findOne(ctx, `SELECT `+courseColumns+` FROM courses WHERE code = $1`, code)
}

// LockForOpening must be called inside WithinTransaction; outside one the lock is
// released as soon as the statement ends.
func (r *CourseRepository) LockForOpening(ctx context.Context, code int) (*domain.Course, error) {
	return r.findOne(ctx, `SELECT `+courseColumns+` FROM courses WHERE code = $1 FOR UPDATE`, code)
}

func (r *CourseRepository) findOne(ctx context.Context, query string, code int) (*domain.Course, error) {
	var course domain.Course
	err := r.guard(func() error {
		var err error
		course, err = scanCourse(r.conn(ctx).QueryRowContext(ctx, query, code))
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) IsOpen(ctx context.Context, code int) (bool, error) {
	var open bool
	err := r.guard(func() error {
		err := r.conn(ctx).QueryRowContext(ctx,
			`SELECT state = 'OPEN' FROM courses WHERE code = $1`, code,
		).Scan(&open)
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		return err
	})
	return open, err
}

func (r *CourseRepository) ListPlanned(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE state = 'PLANNED' ORDER BY start_date, code`)
}

func (r *CourseRepository) ListAll(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY start_date, code`)
}

func (r *CourseRepository) list(ctx context.Context, query string) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.guard(func() error {
		rows, err := r.conn(ctx).QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			courses = append(courses, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) UpdateOnOpen(ctx context.Context, code int, seats int) error {
	return r.guard(func() error {
		res, err := r.conn(ctx).ExecContext(ctx,
			`UPDATE courses SET state = 'OPEN', seats = $2 WHERE code = $1 AND state = 'PLANNED'`,
			code, seats,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ports.ErrConflict
		}
		return nil
	})
}
