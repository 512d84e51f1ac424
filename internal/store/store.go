// Package store persists the per-employee per-day attendance aggregates.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shehrozeikram/ERP-sub001/internal/models"
)

var (
	// ErrNotFound is returned by Get when no aggregate exists for the key.
	ErrNotFound = errors.New("aggregate not found")
	// ErrStoreUnavailable wraps persistence failures; callers surface it as
	// a retryable per-record error.
	ErrStoreUnavailable = errors.New("attendance store unavailable")
)

// AggregateStore is the persistence collaborator keyed by (employee, day).
//
// Upsert loads the aggregate for the key, creating a fresh Absent one if none
// exists, runs mutate under per-key exclusion, and persists only when mutate
// reports a change. The read-modify-write is atomic per key; distinct keys
// proceed in parallel. Returns the (possibly unchanged) aggregate and whether
// a mutation occurred.
type AggregateStore interface {
	Get(ctx context.Context, employeeID uuid.UUID, day string) (models.DailyAttendance, error)
	Upsert(ctx context.Context, employeeID uuid.UUID, day string, mutate func(*models.DailyAttendance) bool) (models.DailyAttendance, bool, error)
}
