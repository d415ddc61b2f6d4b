package services

import (
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
)

// Error kinds. Controllers map these to HTTP statuses with errors.Is, so every
// specific failure below wraps exactly one kind.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency error")
)

var (
	ErrTenantNotFound  = fmt.Errorf("tenant %w", ErrNotFound)
	ErrRoomNotFound    = fmt.Errorf("room %w", ErrNotFound)
	ErrStayNotFound    = fmt.Errorf("stay %w", ErrNotFound)
	ErrRequestNotFound = fmt.Errorf("service request %w", ErrNotFound)

	ErrRoomNotAvailable  = fmt.Errorf("%w: room is not available for check-in", ErrConflict)
	ErrRoomOccupied      = fmt.Errorf("%w: room is currently occupied", ErrConflict)
	ErrRoomNumberTaken   = fmt.Errorf("%w: room number already exists", ErrConflict)
	ErrStayAlreadyClosed = fmt.Errorf("%w: stay is already checked out", ErrConflict)

	ErrInvalidDateRange = fmt.Errorf("%w: check-out date must be after check-in date", ErrValidation)
	ErrServiceDisabled  = fmt.Errorf("%w: this service is not enabled for the hotel", ErrValidation)
)

// invalid builds a ValidationError with a caller-facing message.
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// dependency wraps a persistence failure so controllers surface it as a
// generic "try again" without leaking driver details to callers.
func dependency(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDependency, op, err)
}

// isDuplicateErr detects a unique-index violation on MySQL (error 1062) with
// a string fallback for other dialects (sqlite in tests).
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate entry") || strings.Contains(lc, "unique constraint failed")
}
