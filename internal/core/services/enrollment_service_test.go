package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
	"github.com/AchilleasB/coiipa/training-service/internal/core/services"
	"github.com/AchilleasB/coiipa/training-service/internal/metrics"
	"github.com/AchilleasB/coiipa/training-service/internal/mocks"
)

const courseCode = 42

// today is the calendar day of fixedNow.
var today = domain.DateOf(fixedNow)

type enrollmentFixture struct {
	store   *mocks.MockCourseStore
	tx      *mocks.MockTransactor
	outbox  *mocks.MockOutbox
	service *services.EnrollmentService
	course  *domain.Course
}

func newEnrollmentFixture(opts ...services.Option) enrollmentFixture {
	f := enrollmentFixture{
		store:  mocks.NewMockCourseStore(),
		tx:     mocks.NewMockTransactor(),
		outbox: mocks.NewMockOutbox(),
		course: &domain.Course{
			Code:      courseCode,
			Title:     "Peritaje informatico judicial",
			StartDate: today.AddDays(30),
			State:     domain.CoursePlanned,
		},
	}
	f.store.SeedCourse(*f.course)
	opts = append([]services.Option{services.WithClock(func() time.Time { return fixedNow })}, opts...)
	f.service = services.NewEnrollmentService(f.store, f.store, f.tx, f.outbox, opts...)
	return f
}

func requireViolation(t *testing.T, err error, code string) *domain.RuleViolation {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrBusinessRule)
	var violation *domain.RuleViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, code, violation.Code)
	return violation
}

func TestOpenEnrollment_Success(t *testing.T) {
	f := newEnrollmentFixture()

	err := f.service.OpenEnrollment(context.Background(), f.course, today, today.AddDays(5), "20")

	require.NoError(t, err)
	assert.Equal(t, domain.CourseOpen, f.course.State)
	assert.Equal(t, 20, f.course.Seats)

	stored, _ := f.store.Course(courseCode)
	assert.Equal(t, domain.CourseOpen, stored.State)
	assert.Equal(t, 20, stored.Seats)

	period, ok := f.store.Period(courseCode)
	require.True(t, ok)
	assert.True(t, period.OpensOn.Equal(today))
	assert.True(t, period.ClosesOn.Equal(today.AddDays(5)))
	assert.Equal(t, 20, period.Seats)

	require.Len(t, f.outbox.Events, 1)
	assert.Equal(t, ports.EventEnrollmentOpened, f.outbox.Events[0].EventType)
	var evt ports.EnrollmentOpenedEvent
	require.NoError(t, json.Unmarshal(f.outbox.Events[0].Payload, &evt))
	assert.Equal(t, courseCode, evt.CourseCode)
	assert.Equal(t, today.AddDays(5).String(), evt.ClosesOn)
}

func TestOpenEnrollment_WindowMayEndOnCourseStart(t *testing.T) {
	f := newEnrollmentFixture()

	err := f.service.OpenEnrollment(context.Background(), f.course, today.AddDays(1), f.course.StartDate, "8")

	assert.NoError(t, err)
}

func TestOpenEnrollment_RuleViolations(t *testing.T) {
	tests := []struct {
		name      string
		nilCourse bool
		opensOn   domain.Date
		closesOn  domain.Date
		seats     string
		code      string
		reason    string
	}{
		{"seats_not_a_number", false, today, today.AddDays(5), "abc", domain.CodeInvalidSeats, domain.ReasonInvalidSeats},
		{"seats_empty", false, today, today.AddDays(5), "", domain.CodeInvalidSeats, domain.ReasonInvalidSeats},
		{"seats_overflow", false, today, today.AddDays(5), "3000000000", domain.CodeInvalidSeats, domain.ReasonInvalidSeats},
		{"seats_decimal", false, today, today.AddDays(5), "2.5", domain.CodeInvalidSeats, domain.ReasonInvalidSeats},
		{"no_course", true, today, today.AddDays(5), "20", domain.CodeNoCourse, domain.ReasonNoCourse},
		{"opening_before_today", false, today.AddDays(-1), today.AddDays(5), "20", domain.CodeWindowInPast, domain.ReasonWindowInPast},
		{"closing_before_today", false, today, today.AddDays(-1), "20", domain.CodeWindowInPast, domain.ReasonWindowInPast},
		{"closing_before_opening", false, today.AddDays(5), today.AddDays(2), "20", domain.CodeScheduleConflict, ""},
		{"course_starts_before_opening", false, today.AddDays(31), today.AddDays(35), "20", domain.CodeScheduleConflict, ""},
		{"closing_after_course_start", false, today.AddDays(1), today.AddDays(31), "20", domain.CodeScheduleConflict, ""},
		{"same_day_window", false, today.AddDays(3), today.AddDays(3), "20", domain.CodeSameDayWindow, domain.ReasonSameDay},
		{"same_day_window_any_seats", false, today, today, "500", domain.CodeSameDayWindow, domain.ReasonSameDay},
		{"zero_seats", false, today, today.AddDays(5), "0", domain.CodeInvalidSeats, domain.ReasonInvalidSeats},
		{"negative_seats", false, today, today.AddDays(5), "-3", domain.CodeInvalidSeats, domain.ReasonInvalidSeats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrollmentFixture()
			course := f.course
			if tt.nilCourse {
				course = nil
			}

			err := f.service.OpenEnrollment(context.Background(), course, tt.opensOn, tt.closesOn, tt.seats)

			violation := requireViolation(t, err, tt.code)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, violation.Reason)
			}
			assert.Empty(t, f.store.InsertPeriodCalls)
			assert.Empty(t, f.store.UpdateOnOpenCalls)
			assert.Empty(t, f.outbox.Events)
			assert.Equal(t, domain.CoursePlanned, f.course.State)
		})
	}
}

func TestOpenEnrollment_ScheduleCheckedAgainstStoredCourse(t *testing.T) {
	f := newEnrollmentFixture()
	moved := *f.course
	moved.StartDate = today.AddDays(3)
	f.store.SeedCourse(moved)

	err := f.service.OpenEnrollment(context.Background(), f.course, today, today.AddDays(5), "20")

	violation := requireViolation(t, err, domain.CodeScheduleConflict)
	assert.Contains(t, violation.Reason, today.AddDays(3).String())
	assert.Empty(t, f.store.InsertPeriodCalls)
	assert.Empty(t, f.store.UpdateOnOpenCalls)
	assert.Empty(t, f.outbox.Events)
	assert.Equal(t, domain.CoursePlanned, f.course.State)
}

func TestOpenEnrollment_InvalidSeatTextNeverTouchesStore(t *testing.T) {
	f := newEnrollmentFixture()

	err := f.service.OpenEnrollment(context.Background(), f.course, today, today.AddDays(5), "abc")

	requireViolation(t, err, domain.CodeInvalidSeats)
	assert.Zero(t, f.tx.Calls)
	assert.Empty(t, f.store.LockCalls)
	assert.Empty(t, f.store.IsOpenCalls)
}

func TestOpenEnrollment_ScheduleConflictMentionsStartDate(t *testing.T) {
	f := newEnrollmentFixture()

	err := f.service.OpenEnrollment(context.Background(), f.course, today.AddDays(40), today.AddDays(45), "20")

	violation := requireViolation(t, err, domain.CodeScheduleConflict)
	assert.Contains(t, violation.Reason, f.course.StartDate.String())
}

func TestOpenEnrollment_CheckOrder(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()

	// unparseable seats win over a missing course
	err := f.service.OpenEnrollment(ctx, nil, today, today.AddDays(5), "x")
	requireViolation(t, err, domain.CodeInvalidSeats)

	// a past window wins over a schedule conflict
	err = f.service.OpenEnrollment(ctx, f.course, today.AddDays(-2), today.AddDays(-5), "20")
	requireViolation(t, err, domain.CodeWindowInPast)

	// already open wins over a non-positive seat count
	f.store.SeedCourse(domain.Course{Code: courseCode, StartDate: f.course.StartDate, State: domain.CourseOpen})
	err = f.service.OpenEnrollment(ctx, f.course, today, today.AddDays(5), "0")
	requireViolation(t, err, domain.CodeAlreadyOpen)
}

func TestOpenEnrollment_TwiceOnSameCourse(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()

	require.NoError(t, f.service.OpenEnrollment(ctx, f.course, today, today.AddDays(5), "20"))

	again := &domain.Course{Code: courseCode, StartDate: f.course.StartDate, State: domain.CoursePlanned}
	err := f.service.OpenEnrollment(ctx, again, today.AddDays(1), today.AddDays(6), "10")

	violation := requireViolation(t, err, domain.CodeAlreadyOpen)
	assert.Equal(t, domain.ReasonAlreadyOpen, violation.Reason)
	assert.Equal(t, 1, f.store.PeriodCount())
	stored, _ := f.store.Course(courseCode)
	assert.Equal(t, 20, stored.Seats)
}

func TestOpenEnrollment_ConflictFromStoreMeansAlreadyOpen(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mocks.MockCourseStore)
	}{
		{"period_insert_conflict", func(s *mocks.MockCourseStore) { s.InsertPeriodError = ports.ErrConflict }},
		{"state_update_conflict", func(s *mocks.MockCourseStore) { s.UpdateOnOpenError = ports.ErrConflict }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrollmentFixture()
			tt.setup(f.store)

			err := f.service.OpenEnrollment(context.Background(), f.course, today, today.AddDays(5), "20")

			requireViolation(t, err, domain.CodeAlreadyOpen)
			assert.Equal(t, domain.CoursePlanned, f.course.State)
		})
	}
}

func TestOpenEnrollment_UnknownCourse(t *testing.T) {
	f := newEnrollmentFixture()
	ghost := &domain.Course{Code: 999, StartDate: today.AddDays(30)}

	err := f.service.OpenEnrollment(context.Background(), ghost, today, today.AddDays(5), "20")

	requireViolation(t, err, domain.CodeNoCourse)
}

func TestOpenEnrollment_PersistenceFailures(t *testing.T) {
	dbDown := errors.New("connection reset by peer")

	tests := []struct {
		name  string
		setup func(f enrollmentFixture)
	}{
		{"begin", func(f enrollmentFixture) { f.tx.BeginError = dbDown }},
		{"lock", func(f enrollmentFixture) { f.store.LockError = dbDown }},
		{"is_open", func(f enrollmentFixture) { f.store.IsOpenError = dbDown }},
		{"insert_period", func(f enrollmentFixture) { f.store.InsertPeriodError = dbDown }},
		{"update_course", func(f enrollmentFixture) { f.store.UpdateOnOpenError = dbDown }},
		{"outbox", func(f enrollmentFixture) { f.outbox.EnqueueError = dbDown }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrollmentFixture()
			tt.setup(f)

			err := f.service.OpenEnrollment(context.Background(), f.course, today, today.AddDays(5), "20")

			assert.ErrorIs(t, err, domain.ErrPersistence)
			assert.ErrorIs(t, err, dbDown)
			assert.NotErrorIs(t, err, domain.ErrBusinessRule)
			assert.Equal(t, domain.CoursePlanned, f.course.State)
		})
	}
}

func TestOpenEnrollment_ConcurrentOpeners(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var opened, rejected atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			course := &domain.Course{Code: courseCode, StartDate: f.course.StartDate}
			err := f.service.OpenEnrollment(ctx, course, today, today.AddDays(5), "20")
			switch {
			case err == nil:
				opened.Add(1)
			case errors.Is(err, domain.ErrBusinessRule):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opened.Load())
	assert.Equal(t, int32(goroutines-1), rejected.Load())
	assert.Equal(t, 1, f.store.PeriodCount())
}

func TestOpenEnrollment_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newEnrollmentFixture(services.WithMetrics(metrics.New(reg)))
	ctx := context.Background()

	_ = f.service.OpenEnrollment(ctx, f.course, today, today, "20")
	require.NoError(t, f.service.OpenEnrollment(ctx, f.course, today, today.AddDays(5), "20"))

	count, err := testutil.GatherAndCount(reg,
		"training_enrollment_periods_opened_total",
		"training_enrollment_openings_rejected_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEnrollmentService_Queries(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()

	open, err := f.service.IsOpen(ctx, f.course)
	require.NoError(t, err)
	assert.False(t, open)

	free, err := f.service.SeatsRemaining(ctx, f.course)
	require.NoError(t, err)
	assert.False(t, free)

	require.NoError(t, f.service.OpenEnrollment(ctx, f.course, today, today.AddDays(5), "20"))

	open, err = f.service.IsOpen(ctx, f.course)
	require.NoError(t, err)
	assert.True(t, open)

	free, err = f.service.SeatsRemaining(ctx, f.course)
	require.NoError(t, err)
	assert.True(t, free)

	courses, err := f.service.ListOpenCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, courseCode, courses[0].Code)
	assert.Equal(t, 20, courses[0].SeatsLeft)
}
