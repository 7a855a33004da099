package ports

import (
	"context"
	"time"
)

const (
	EventMemberRegistered = "member.registered"
	EventEnrollmentOpened = "enrollment.opened"
)

type MemberRegisteredEvent struct {
	NationalID string `json:"national_id"`
	GivenName  string `json:"given_name"`
	Surname    string `json:"surname"`
	Center     string `json:"center"`
}

type EnrollmentOpenedEvent struct {
	CourseCode int    `json:"course_code"`
	Title      string `json:"title"`
	OpensOn    string `json:"opens_on"`
	ClosesOn   string `json:"closes_on"`
	Seats      int    `json:"seats"`
}

// OutboxEvent is a domain event stored next to the state change that produced it.
type OutboxEvent struct {
	ID        string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxWriter stores an event in the caller's transaction.
type OutboxWriter interface {
	Enqueue(ctx context.Context, eventType string, payload any) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt OutboxEvent) error
}
