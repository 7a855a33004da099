// Package metrics holds the Prometheus collectors for registrations and enrollment openings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "training"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	membersRegistered     prometheus.Counter
	registrationsRejected *prometheus.CounterVec
	periodsOpened         prometheus.Counter
	openingsRejected      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		membersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_registered_total",
			Help:      "Members registered successfully.",
		}),
		registrationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_registrations_rejected_total",
			Help:      "Member registrations rejected, by reason.",
		}, []string{"reason"}),
		periodsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollment_periods_opened_total",
			Help:      "Enrollment periods opened.",
		}),
		openingsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollment_openings_rejected_total",
			Help:      "Enrollment period openings rejected, by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) MemberRegistered() {
	if m == nil {
		return
	}
	m.membersRegistered.Inc()
}

func (m *Metrics) RegistrationRejected(reason string) {
	if m == nil {
		return
	}
	m.registrationsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) PeriodOpened() {
	if m == nil {
		return
	}
	m.periodsOpened.Inc()
}

func (m *Metrics) OpeningRejected(reason string) {
	if m == nil {
		return
	}
	m.openingsRejected.WithLabelValues(reason).Inc()
}
