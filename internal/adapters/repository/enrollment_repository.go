package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

type EnrollmentPeriodRepository struct {
	*SQLRepository
}

var _ ports.EnrollmentPeriodStore = (*EnrollmentPeriodRepository)(nil)

func NewEnrollmentPeriodRepository(base *SQLRepository) *EnrollmentPeriodRepository {
	return &EnrollmentPeriodRepository{SQLRepository: base}
}

func (r *EnrollmentPeriodRepository) Insert(ctx context.Context, period domain.EnrollmentPeriod) error {
	return r.guard(func() error {
		_, err := r.conn(ctx).ExecContext(ctx,
			`INSERT INTO enrollment_periods (course_code, opens_on, closes_on, seats)
			 VALUES ($1, $2, $3, $4)`,
			period.CourseCode, period.OpensOn.String(), period.ClosesOn.String(), period.Seats,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("enrollment period for course %d: %w", period.CourseCode, ports.ErrConflict)
		}
		return err
	})
}

func (r *EnrollmentPeriodRepository) ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error) {
	var out []domain.OpenCourse
	err := r.guard(func() error {
		rows, err := r.conn(ctx).QueryContext(ctx, `
			SELECT c.code, c.title, c.start_date, c.seats, c.state,
			       p.opens_on, p.closes_on,
			       p.seats - (SELECT COUNT(*) FROM course_enrollments e WHERE e.course_code = c.code)
			FROM courses c
			JOIN enrollment_periods p ON p.course_code = c.code
			WHERE c.state = 'OPEN'
			ORDER BY c.start_date, c.code`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				oc                   domain.OpenCourse
				start, opens, closes time.Time
				state                string
			)
			if err := rows.Scan(&oc.Code, &oc.Title, &start, &oc.Seats, &state,
				&opens, &closes, &oc.SeatsLeft); err != nil {
				return err
			}
			oc.StartDate = domain.DateOf(start)
			oc.State = domain.CourseState(state)
			oc.OpensOn = domain.DateOf(opens)
			oc.ClosesOn = domain.DateOf(closes)
			out = append(out, oc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EnrollmentPeriodRepository) HasFreeSeats(ctx context.Context, courseCode int) (bool, error) {
	left, err := r.SeatsLeft(ctx, courseCode)
	if err != nil {
		return false, err
	}
	return left > 0, nil
}

// SeatsLeft is the period's seats minus current enrollments, or zero when the course
// has no period.
func (r *EnrollmentPeriodRepository) SeatsLeft(ctx context.Context, courseCode int) (int, error) {
	var left int
	err := r.guard(func() error {
		return r.conn(ctx).QueryRowContext(ctx, `
			SELECT COALESCE(MAX(p.seats) - COUNT(e.national_id), 0)
			FROM enrollment_periods p
			LEFT JOIN course_enrollments e ON e.course_code = p.course_code
			WHERE p.course_code = $1`, courseCode,
		).Scan(&left)
	})
	return left, err
}
