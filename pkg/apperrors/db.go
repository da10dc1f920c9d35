package apperrors

import (
	"errors"

	"github.com/lib/pq"
)

// WrapDBError maps low-level postgres failures onto the error taxonomy.
// Unique violations become ConflictError; everything else is a
// PersistenceError.
func WrapDBError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &ConflictError{message: message, code: string(pqErr.Code)}
		case "23503":
			return &ConflictError{message: "value is still referenced by another resource: " + message, code: string(pqErr.Code)}
		}
	}
	return NewPersistence(message, err)
}
