package instantdb

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the InstantDB app ID is missing or still
// set to the placeholder value. Callers must treat it as a configuration
// problem, not a transport failure.
var ErrNotConfigured = errors.New("database not initialized")

// ErrQueryTimeout is returned by QueryOnce when no response arrives within
// the deadline.
var ErrQueryTimeout = errors.New("query timed out")

// StoreError represents a failure reported by the InstantDB API or the
// transport underneath it.
type StoreError struct {
	Op      string // "mutation" or "query"
	Status  int    // HTTP status, 0 for transport errors
	Message string
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("instantdb %s failed: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("instantdb %s failed: %s", e.Op, e.Message)
}
