// Package store implements the equipment lifecycle over SQLite: the
// equipment registry (status transitions), the checkout ledger, damage
// reporting, and the read projections the presentation layer consumes.
// Every compound operation runs in a single transaction; partial
// application is the failure mode this package exists to prevent.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Failure classes callers need to tell apart. Store functions wrap
// these with fmt.Errorf("%w: ...") so errors.Is works while the message
// still names the violated constraint.
var (
	// ErrNotFound marks operations on rows that no longer exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks operations that would violate a state
	// constraint, e.g. issuing equipment already in someone's hands.
	ErrConflict = errors.New("conflict")
	// ErrInvalid marks input rejected before any mutation.
	ErrInvalid = errors.New("invalid input")
)

// querier is the subset of *sql.DB and *sql.Tx shared by helpers that
// must run both standalone and inside a caller's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dateLayout is the on-disk date format for checkout and report dates.
const dateLayout = "2006-01-02"

func validDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD: %q", ErrInvalid, date)
	}
	return nil
}

// ValidDate reports whether a string is a date in the ledger's format.
func ValidDate(date string) bool {
	return validDate(date) == nil
}

// Today returns the current date in the ledger's date format.
func Today() string {
	return time.Now().Format(dateLayout)
}
