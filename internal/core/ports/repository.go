package ports

import (
	"context"
	"errors"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
)

// Infrastructure facts returned (optionally wrapped) by store adapters.
// Services translate them into domain errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type MemberStore interface {
	// FindByNationalID returns ErrNotFound when no member has the id.
	FindByNationalID(ctx context.Context, nationalID string) (*domain.Member, error)
	// Insert returns ErrConflict when the national id is already stored.
	Insert(ctx context.Context, member domain.Member) (*domain.Member, error)
}

type CourseStore interface {
	FindByCode(ctx context.Context, code int) (*domain.Course, error)
	// LockForOpening loads the course and holds its row until the surrounding
	// transaction ends.
	LockForOpening(ctx context.Context, code int) (*domain.Course, error)
	IsOpen(ctx context.Context, code int) (bool, error)
	ListPlanned(ctx context.Context) ([]domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
	// UpdateOnOpen sets state OPEN and the seat count. Returns ErrConflict when the
	// course is no longer PLANNED.
	UpdateOnOpen(ctx context.Context, code int, seats int) error
}

type EnrollmentPeriodStore interface {
	// Insert returns ErrConflict when the course already has a period.
	Insert(ctx context.Context, period domain.EnrollmentPeriod) error
	ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error)
	HasFreeSeats(ctx context.Context, courseCode int) (bool, error)
	SeatsLeft(ctx context.Context, courseCode int) (int, error)
}

// Transactor runs fn in a single store transaction. Stores called with the
// context passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemberCache is a read-through cache for member lookups. Get returns nil, nil on a miss.
type MemberCache interface {
	Get(ctx context.Context, nationalID string) (*domain.Member, error)
	Set(ctx context.Context, member *domain.Member) error
}
