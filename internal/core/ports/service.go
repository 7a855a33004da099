package ports

import (
	"context"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
)

type MemberRegistry interface {
	Register(ctx context.Context, candidate *domain.Member) (*domain.Member, error)
	FindByNationalID(ctx context.Context, nationalID string) (*domain.Member, error)
}

type CourseCatalog interface {
	FindByCode(ctx context.Context, code int) (*domain.Course, error)
	IsOpen(ctx context.Context, course *domain.Course) (bool, error)
	ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error)
	ListPlanned(ctx context.Context) ([]domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
	SeatsRemaining(ctx context.Context, course *domain.Course) (bool, error)
	SeatsLeft(ctx context.Context, course *domain.Course) (int, error)
}

type EnrollmentManager interface {
	OpenEnrollment(ctx context.Context, course *domain.Course, opensOn, closesOn domain.Date, seatsText string) error
	ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error)
	SeatsRemaining(ctx context.Context, course *domain.Course) (bool, error)
	IsOpen(ctx context.Context, course *domain.Course) (bool, error)
}
