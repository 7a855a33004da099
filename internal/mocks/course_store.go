package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// MockCourseStore implements both ports.CourseStore and ports.EnrollmentPeriodStore
// over shared in-memory state, so a period insert is visible to course queries.
type MockCourseStore struct {
	mu sync.RWMutex

	courses  map[int]domain.Course
	periods  map[int]domain.EnrollmentPeriod
	enrolled map[int]int

	// Call tracking
	LockCalls         []int
	IsOpenCalls       []int
	InsertPeriodCalls []domain.EnrollmentPeriod
	UpdateOnOpenCalls []int

	// Error injection
	FindError         error
	LockError         error
	IsOpenError       error
	ListError         error
	InsertPeriodError error
	UpdateOnOpenError error
	SeatsError        error
}

var (
	_ ports.CourseStore           = (*MockCourseStore)(nil)
	_ ports.EnrollmentPeriodStore = (*MockCourseStore)(nil)
)

func NewMockCourseStore() *MockCourseStore {
	return &MockCourseStore{
		courses:  make(map[int]domain.Course),
		periods:  make(map[int]domain.EnrollmentPeriod),
		enrolled: make(map[int]int),
	}
}

func (m *MockCourseStore) SeedCourse(course domain.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if course.State == "" {
		course.State = domain.CoursePlanned
	}
	m.courses[course.Code] = course
}

// SetEnrolled records how many members hold a seat in the course.
func (m *MockCourseStore) SetEnrolled(code, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrolled[code] = count
}

func (m *MockCourseStore) Course(code int) (domain.Course, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[code]
	return c, ok
}

func (m *MockCourseStore) Period(code int) (domain.EnrollmentPeriod, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.periods[code]
	return p, ok
}

func (m *MockCourseStore) PeriodCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.periods)
}

func (m *MockCourseStore) FindByCode(ctx context.Context, code int) (*domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindError != nil {
		return nil, m.FindError
	}
	c, ok := m.courses[code]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &c, nil
}

func (m *MockCourseStore) LockForOpening(ctx context.Context, code int) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockCalls = append(m.LockCalls, code)
	if m.LockError != nil {
		return nil, m.LockError
	}
	c, ok := m.courses[code]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &c, nil
}

func (m *MockCourseStore) IsOpen(ctx context.Context, code int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsOpenCalls = append(m.IsOpenCalls, code)
	if m.IsOpenError != nil {
		return false, m.IsOpenError
	}
	c, ok := m.courses[code]
	if !ok {
		return false, ports.ErrNotFound
	}
	return c.State == domain.CourseOpen, nil
}

func (m *MockCourseStore) ListPlanned(ctx context.Context) ([]domain.Course, error) {
	return m.list(func(c domain.Course) bool { return c.State == domain.CoursePlanned })
}

func (m *MockCourseStore) ListAll(ctx context.Context) ([]domain.Course, error) {
	return m.list(func(domain.Course) bool { return true })
}

func (m *MockCourseStore) list(keep func(domain.Course) bool) ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []domain.Course
	for _, c := range m.courses {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockCourseStore) UpdateOnOpen(ctx context.Context, code int, seats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateOnOpenCalls = append(m.UpdateOnOpenCalls, code)
	if m.UpdateOnOpenError != nil {
		return m.UpdateOnOpenError
	}
	c, ok := m.courses[code]
	if !ok || c.State != domain.CoursePlanned {
		return ports.ErrConflict
	}
	c.State = domain.CourseOpen
	c.Seats = seats
	m.courses[code] = c
	return nil
}

func (m *MockCourseStore) Insert(ctx context.Context, period domain.EnrollmentPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertPeriodCalls = append(m.InsertPeriodCalls, period)
	if m.InsertPeriodError != nil {
		return m.InsertPeriodError
	}
	if _, exists := m.periods[period.CourseCode]; exists {
		return ports.ErrConflict
	}
	m.periods[period.CourseCode] = period
	return nil
}

func (m *MockCourseStore) ListOpenCourses(ctx context.Context) ([]domain.OpenCourse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []domain.OpenCourse
	for code, c := range m.courses {
		p, ok := m.periods[code]
		if c.State != domain.CourseOpen || !ok {
			continue
		}
		out = append(out, domain.OpenCourse{
			Course:    c,
			OpensOn:   p.OpensOn,
			ClosesOn:  p.ClosesOn,
			SeatsLeft: p.Seats - m.enrolled[code],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockCourseStore) HasFreeSeats(ctx context.Context, courseCode int) (bool, error) {
	left, err := m.SeatsLeft(ctx, courseCode)
	return left > 0, err
}

func (m *MockCourseStore) SeatsLeft(ctx context.Context, courseCode int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.SeatsError != nil {
		return 0, m.SeatsError
	}
	p, ok := m.periods[courseCode]
	if !ok {
		return 0, nil
	}
	return p.Seats - m.enrolled[courseCode], nil
}
