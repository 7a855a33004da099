package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers test for them with errors.Is.
var (
	// ErrInvalidArgument marks structurally invalid caller input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBusinessRule marks well-formed requests rejected by current system state.
	ErrBusinessRule = errors.New("business rule violation")
	// ErrDuplicateMember is the business rule violation raised for a repeated national ID.
	ErrDuplicateMember = errors.New("duplicate member")
	// ErrPersistence marks failures of the backing store.
	ErrPersistence = errors.New("persistence failure")
)

// Rule violation codes, stable for clients and metrics labels.
const (
	CodeInvalidSeats     = "invalid_seats"
	CodeNoCourse         = "no_course_selected"
	CodeWindowInPast     = "window_in_past"
	CodeScheduleConflict = "schedule_conflict"
	CodeSameDayWindow    = "same_day_window"
	CodeAlreadyOpen      = "already_open"
	CodeDuplicateMember  = "duplicate_member"
)

const (
	ReasonInvalidSeats = "invalid seat count"
	ReasonNoCourse     = "no course selected"
	ReasonWindowInPast = "opening period must start no earlier than today"
	ReasonSameDay      = "minimum enrollment window is one full day"
	ReasonAlreadyOpen  = "course already has an open enrollment period"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RuleViolation carries a human-readable reason for operator display.
type RuleViolation struct {
	Code   string
	Reason string
}

func NewRuleViolation(code, reason string) *RuleViolation {
	return &RuleViolation{Code: code, Reason: reason}
}

func NewDuplicateMember(nationalID string) *RuleViolation {
	return &RuleViolation{
		Code:   CodeDuplicateMember,
		Reason: fmt.Sprintf("a member with national id %s is already registered", nationalID),
	}
}

func NewScheduleConflict(courseStart Date) *RuleViolation {
	return &RuleViolation{
		Code:   CodeScheduleConflict,
		Reason: fmt.Sprintf("enrollment window conflicts with course schedule (course starts %s)", courseStart),
	}
}

func (e *RuleViolation) Error() string {
	return e.Reason
}

func (e *RuleViolation) Is(target error) bool {
	if target == ErrBusinessRule {
		return true
	}
	return target == ErrDuplicateMember && e.Code == CodeDuplicateMember
}

// PersistenceError wraps a store failure. It is not recoverable by the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
