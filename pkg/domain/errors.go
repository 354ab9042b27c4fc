package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies allocation and lifecycle failures.
type ErrorKind string

// Failure kinds reported by the store, status machine, and allocation engine.
const (
	KindNotFound          ErrorKind = "NotFound"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindTerminalState     ErrorKind = "TerminalState"
	KindNotAvailable      ErrorKind = "NotAvailable"
	KindAlreadyAssigned   ErrorKind = "AlreadyAssigned"
	KindAssignmentClosed  ErrorKind = "AssignmentClosed"
	KindCapacityExceeded  ErrorKind = "CapacityExceeded"
	KindCampaignNotActive ErrorKind = "CampaignNotActive"
	KindCampaignNotFound  ErrorKind = "CampaignNotFound"
	KindAlreadyApplied    ErrorKind = "AlreadyApplied"
	KindNotOpen           ErrorKind = "NotOpen"
	KindNotInProgress     ErrorKind = "NotInProgress"
	KindNotCompleted      ErrorKind = "NotCompleted"
	KindInvalid           ErrorKind = "Invalid"
	KindStillReferenced   ErrorKind = "StillReferenced"
	KindAlreadyExists     ErrorKind = "AlreadyExists"
)

// Error is the typed failure returned by every domain operation. Matching with
// errors.Is compares kinds, so callers can test against the sentinels below.
type Error struct {
	Kind   ErrorKind
	Entity EntityType
	ID     string
	Status string
	Action Action
	Detail string
	Cause  error
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrTerminalState     = &Error{Kind: KindTerminalState}
	ErrNotAvailable      = &Error{Kind: KindNotAvailable}
	ErrAlreadyAssigned   = &Error{Kind: KindAlreadyAssigned}
	ErrAssignmentClosed  = &Error{Kind: KindAssignmentClosed}
	ErrCapacityExceeded  = &Error{Kind: KindCapacityExceeded}
	ErrCampaignNotActive = &Error{Kind: KindCampaignNotActive}
	ErrCampaignNotFound  = &Error{Kind: KindCampaignNotFound}
	ErrAlreadyApplied    = &Error{Kind: KindAlreadyApplied}
	ErrNotOpen           = &Error{Kind: KindNotOpen}
	ErrNotInProgress     = &Error{Kind: KindNotInProgress}
	ErrNotCompleted      = &Error{Kind: KindNotCompleted}
	ErrInvalid           = &Error{Kind: KindInvalid}
	ErrStillReferenced   = &Error{Kind: KindStillReferenced}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(string(e.Entity))
		if e.ID != "" {
			fmt.Fprintf(&b, " %q", e.ID)
		}
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " in status %s", e.Status)
	}
	if e.Action != "" {
		fmt.Fprintf(&b, " cannot %s", e.Action)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (")
		b.WriteString(e.Cause.Error())
		b.WriteString(")")
	}
	return b.String()
}

// Is matches on kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// NotFound builds a NotFound error for the given record.
func NotFound(entity EntityType, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// Invalid builds a validation error for the given record.
func Invalid(entity EntityType, id, detail string) *Error {
	return &Error{Kind: KindInvalid, Entity: entity, ID: id, Detail: detail}
}

// KindOf returns the kind of the outermost domain error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
