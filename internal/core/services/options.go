package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
	"github.com/AchilleasB/coiipa/training-service/internal/metrics"
)

type settings struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	maxYear int
	cache   ports.MemberCache
}

type Option func(s *settings)

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithMaxRegistrationYear caps the registration year of new members.
// Zero keeps the default of the current year.
func WithMaxRegistrationYear(year int) Option {
	return func(s *settings) {
		s.maxYear = year
	}
}

func WithMemberCache(cache ports.MemberCache) Option {
	return func(s *settings) {
		s.cache = cache
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
