package services

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// EnrollmentService opens enrollment periods. A course moves PLANNED -> OPEN exactly once;
// there is no transition back.
type EnrollmentService struct {
	catalog *CourseCatalog
	courses ports.CourseStore
	periods ports.EnrollmentPeriodStore
	tx      ports.Transactor
	outbox  ports.OutboxWriter
	settings
}

var _ ports.EnrollmentManager = (*EnrollmentService)(nil)

func NewEnrollmentService(
	courses ports.CourseStore,
	periods ports.EnrollmentPeriodStore,
	tx ports.Transactor,
	outbox ports.OutboxWriter,
	opts ...Option,
) *EnrollmentService {
	return &EnrollmentService{
		catalog:  NewCourseCatalog(courses, periods),
		courses:  courses,
		periods:  periods,
		tx:       tx,
		outbox:   outbox,
		settings: newSettings(opts),
	}
}

// OpenEnrollment opens the enrollment window [opensOn, closesOn] for course with the
// seat count given in seatsText. Checks run in a fixed order and the first failing one is
// returned as a *domain.RuleViolation. On success course is updated in place to reflect
// its new OPEN state.
func (s *EnrollmentService) OpenEnrollment(
	ctx context.Context,
	course *domain.Course,
	opensOn, closesOn domain.Date,
	seatsText string,
) error {
	// seats are stored in a 32-bit column
	parsed, err := strconv.ParseInt(seatsText, 10, 32)
	if err != nil {
		return s.reject(domain.NewRuleViolation(domain.CodeInvalidSeats, domain.ReasonInvalidSeats))
	}
	if course == nil {
		return s.reject(domain.NewRuleViolation(domain.CodeNoCourse, domain.ReasonNoCourse))
	}

	seats := int(parsed)

	today := domain.DateOf(s.now())
	if opensOn.Before(today) || closesOn.Before(today) {
		return s.reject(domain.NewRuleViolation(domain.CodeWindowInPast, domain.ReasonWindowInPast))
	}
	if closesOn.Before(opensOn) || course.StartDate.Before(opensOn) || course.StartDate.Before(closesOn) {
		return s.reject(domain.NewScheduleConflict(course.StartDate))
	}
	if opensOn.Equal(closesOn) {
		return s.reject(domain.NewRuleViolation(domain.CodeSameDayWindow, domain.ReasonSameDay))
	}

	period := domain.EnrollmentPeriod{
		CourseCode: course.Code,
		OpensOn:    opensOn,
		ClosesOn:   closesOn,
		Seats:      seats,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.courses.LockForOpening(ctx, course.Code)
		if errors.Is(err, ports.ErrNotFound) {
			return domain.NewRuleViolation(domain.CodeNoCourse, domain.ReasonNoCourse)
		}
		if err != nil {
			return err
		}
		// the caller's course may be stale; the locked row is authoritative
		if locked.StartDate.Before(opensOn) || locked.StartDate.Before(closesOn) {
			return domain.NewScheduleConflict(locked.StartDate)
		}

		open, err := s.catalog.IsOpen(ctx, locked)
		if err != nil {
			return err
		}
		if open {
			return domain.NewRuleViolation(domain.CodeAlreadyOpen, domain.ReasonAlreadyOpen)
		}
		if seats <= 0 {
			return domain.NewRuleViolation(domain.CodeInvalidSeats, domain.ReasonInvalidSeats)
		}

		if err := s.periods.Insert(ctx, period); err != nil {
			return err
		}
		if err := s.courses.UpdateOnOpen(ctx, course.Code, seats); err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, ports.EventEnrollmentOpened, ports.EnrollmentOpenedEvent{
			CourseCode: course.Code,
			Title:      locked.Title,
			OpensOn:    opensOn.String(),
			ClosesOn:   closesOn.String(),
			Seats:      seats,
		})
	})
	if err != nil {
		return s.classify(err)
	}

	course.Seats = seats
	course.State = domain.CourseOpen

	s.metrics.PeriodOpened()
	s.logger.Info("enrollment period opened",
		zap.Int("course_code", course.Code),
		zap.Stringer("opens_on", opensOn),
		zap.Stringer("closes_on", closesOn),
		zap.Int("seats", seats),
	)
	return nil
}

func (s *EnrollmentService) ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error) {
	return s.catalog.ListOpenCourses(ctx)
}

func (s *EnrollmentService) SeatsRemaining(ctx context.Context, course *domain.Course) (bool, error) {
	return s.catalog.SeatsRemaining(ctx, course)
}

func (s *EnrollmentService) IsOpen(ctx context.Context, course *domain.Course) (bool, error) {
	return s.catalog.IsOpen(ctx, course)
}

// classify maps an error from the opening transaction onto the domain error kinds.
func (s *EnrollmentService) classify(err error) error {
	var violation *domain.RuleViolation
	switch {
	case errors.As(err, &violation):
		return s.reject(violation)
	case errors.Is(err, ports.ErrConflict):
		// a concurrent opener committed first
		return s.reject(domain.NewRuleViolation(domain.CodeAlreadyOpen, domain.ReasonAlreadyOpen))
	case errors.Is(err, domain.ErrPersistence):
		return err
	default:
		return domain.NewPersistenceError("open enrollment", err)
	}
}

func (s *EnrollmentService) reject(violation *domain.RuleViolation) error {
	s.metrics.OpeningRejected(violation.Code)
	s.logger.Debug("enrollment opening rejected",
		zap.String("code", violation.Code),
		zap.String("reason", violation.Reason),
	)
	return violation
}
