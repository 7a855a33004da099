package services

import (
	"context"
	"errors"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// CourseCatalog is a read-only view over course state and seat availability.
type CourseCatalog struct {
	courses ports.CourseStore
	periods ports.EnrollmentPeriodStore
}

var _ ports.CourseCatalog = (*CourseCatalog)(nil)

func NewCourseCatalog(courses ports.CourseStore, periods ports.EnrollmentPeriodStore) *CourseCatalog {
	return &CourseCatalog{courses: courses, periods: periods}
}

// FindByCode returns nil, nil for an unknown course code.
func (c *CourseCatalog) FindByCode(ctx context.Context, code int) (*domain.Course, error) {
	course, err := c.courses.FindByCode(ctx, code)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError("find course", err)
	}
	return course, nil
}

// IsOpen reports the persisted state flag of the course.
func (c *CourseCatalog) IsOpen(ctx context.Context, course *domain.Course) (bool, error) {
	if course == nil {
		return false, domain.NewRuleViolation(domain.CodeNoCourse, domain.ReasonNoCourse)
	}
	open, err := c.courses.IsOpen(ctx, course.Code)
	if err != nil {
		return false, domain.NewPersistenceError("check course state", err)
	}
	return open, nil
}

// ListOpenCourses returns the courses in state OPEN in store order.
func (c *CourseCatalog) ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error) {
	courses, err := c.periods.ListOpenCourses(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("list open courses", err)
	}
	return courses, nil
}

func (c *CourseCatalog) ListPlanned(ctx context.Context) ([]domain.Course, error) {
	courses, err := c.courses.ListPlanned(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("list planned courses", err)
	}
	return courses, nil
}

func (c *CourseCatalog) ListAll(ctx context.Context) ([]domain.Course, error) {
	courses, err := c.courses.ListAll(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("list courses", err)
	}
	return courses, nil
}

// SeatsRemaining reports whether any seat of the course's period is still free.
// Use SeatsLeft when the count matters.
func (c *CourseCatalog) SeatsRemaining(ctx context.Context, course *domain.Course) (bool, error) {
	if course == nil {
		return false, domain.NewRuleViolation(domain.CodeNoCourse, domain.ReasonNoCourse)
	}
	free, err := c.periods.HasFreeSeats(ctx, course.Code)
	if err != nil {
		return false, domain.NewPersistenceError("check free seats", err)
	}
	return free, nil
}

// SeatsLeft is zero for a course without an enrollment period.
func (c *CourseCatalog) SeatsLeft(ctx context.Context, course *domain.Course) (int, error) {
	if course == nil {
		return 0, domain.NewRuleViolation(domain.CodeNoCourse, domain.ReasonNoCourse)
	}
	left, err := c.periods.SeatsLeft(ctx, course.Code)
	if err != nil {
		return 0, domain.NewPersistenceError("count free seats", err)
	}
	return left, nil
}
