package apperrors

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError marks malformed or missing caller input. Never worth an
// automatic retry.
type ValidationError struct {
	message string
}

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.message
}

// NotFoundError carries every missing id so batch callers can report the
// full set, not just the first miss.
type NotFoundError struct {
	Resource string
	IDs      []int
}

func NewNotFound(resource string, ids ...int) *NotFoundError {
	return &NotFoundError{Resource: resource, IDs: ids}
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(parts, ", "))
}

// ConflictError marks a uniqueness violation.
type ConflictError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23505")
}

func NewConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string {
	if e.code == "" {
		return e.message
	}
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

// ContentionError means a lock was not acquired within the caller's timeout.
// Nothing was changed; the operation is safe to retry.
type ContentionError struct {
	message string
}

func NewContention(format string, args ...interface{}) *ContentionError {
	return &ContentionError{message: fmt.Sprintf(format, args...)}
}

func (e *ContentionError) Error() string {
	return e.message
}

// PersistenceError wraps a storage failure. Callers must treat the preceding
// mutation as unconfirmed.
type PersistenceError struct {
	message string
	err     error
}

func NewPersistence(message string, err error) *PersistenceError {
	return &PersistenceError{message: message, err: err}
}

func (e *PersistenceError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *PersistenceError) Unwrap() error {
	return e.err
}

// AuditGapError means the mutation committed but the activity log write did
// not. State changed; the trail may be incomplete. Must never be conflated
// with a full abort.
type AuditGapError struct {
	err error
}

func NewAuditGap(err error) *AuditGapError {
	return &AuditGapError{err: err}
}

func (e *AuditGapError) Error() string {
	return fmt.Sprintf("mutation committed but activity log write failed: %v", e.err)
}

func (e *AuditGapError) Unwrap() error {
	return e.err
}
