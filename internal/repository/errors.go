// Package repository holds the SQL data access layer.  The sentinel errors
// below let handlers distinguish failure scenarios without looking at driver
// specific error values.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate signals a uniqueness violation (category name, user email,
// tribune name within an event).  Handlers answer 409.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a delete cannot proceed because dependent
// rows exist, e.g. a category that still has events.
var ErrConflict = errors.New("conflict")

// Per-table not-found errors.  All of them match ErrNotFound with errors.Is.
var (
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrEventNotFound    = fmt.Errorf("event %w", ErrNotFound)
	ErrTribuneNotFound  = fmt.Errorf("tribune %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
)

// ErrInsufficientSeats is returned when a tribune has fewer available seats
// than requested.  No row is changed in that case.
var ErrInsufficientSeats = errors.New("not enough tickets available")

// ErrInvalidTransition is returned when a status update is not allowed from
// the order's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidReference is returned when a foreign id (category, event, user)
// supplied in a write does not resolve to an existing row.
var ErrInvalidReference = errors.New("invalid reference")

// mysqlErrorNumber returns the server error number carried by err, or 0.
func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isForeignKeyViolation reports whether err is MySQL error 1451 (parent row
// still referenced) or 1452 (child row points at a missing parent).
func isForeignKeyViolation(err error) bool {
	n := mysqlErrorNumber(err)
	return n == 1451 || n == 1452
}

// isDuplicateKey reports whether err is MySQL error 1062.
func isDuplicateKey(err error) bool {
	if n := mysqlErrorNumber(err); n != 0 {
		return n == 1062
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
