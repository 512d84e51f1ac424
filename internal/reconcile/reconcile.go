// Package reconcile applies attendance punches to the per-employee daily
// aggregate. The merge is idempotent, order independent within a day, and
// keeps earliest check-in / latest check-out monotonic.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shehrozeikram/ERP-sub001/internal/models"
	"github.com/shehrozeikram/ERP-sub001/internal/store"
	"github.com/shehrozeikram/ERP-sub001/internal/timeutil"
)

type Direction int

const (
	CheckIn Direction = iota
	CheckOut
)

func (d Direction) String() string {
	if d == CheckIn {
		return "check-in"
	}
	return "check-out"
}

// Actions reported per applied event.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionUnchanged = "unchanged"
)

type Result struct {
	Aggregate models.DailyAttendance
	Action    string
}

// Engine serializes punches per (employee, day) key through the aggregate
// store and applies the merge rule.
type Engine struct {
	Store    store.AggregateStore
	Location *time.Location
}

func NewEngine(aggregates store.AggregateStore, loc *time.Location) *Engine {
	return &Engine{Store: aggregates, Location: loc}
}

// Apply reconciles one resolved, normalized punch. The store guarantees the
// read-merge-write is atomic for the key; no-op merges are not persisted.
func (e *Engine) Apply(ctx context.Context, employeeID uuid.UUID, instant time.Time, direction Direction) (Result, error) {
	day := timeutil.DayOf(instant, e.Location)

	existed := true
	aggregate, mutated, err := e.Store.Upsert(ctx, employeeID, day, func(agg *models.DailyAttendance) bool {
		if agg.Status == models.StatusAbsent {
			existed = false
		}
		return merge(agg, instant, direction)
	})
	if err != nil {
		return Result{}, err
	}

	action := ActionUnchanged
	if mutated {
		action = ActionUpdated
		if !existed {
			action = ActionCreated
		}
	}
	return Result{Aggregate: aggregate, Action: action}, nil
}

// merge applies one punch to the aggregate and reports whether it changed
// anything. Check-ins only ever pull EarliestCheckIn earlier, check-outs only
// ever push LatestCheckOut later; a check-out with no prior check-in records
// the same instant on both sides (single-punch day).
func merge(agg *models.DailyAttendance, instant time.Time, direction Direction) bool {
	switch agg.Status {
	case models.StatusAbsent:
		t := instant
		agg.EarliestCheckIn = &t
		if direction == CheckOut {
			out := instant
			agg.LatestCheckOut = &out
		}
		agg.Status = models.StatusOpen
		return true

	case models.StatusOpen:
		if direction == CheckIn {
			return mergeCheckIn(agg, instant)
		}
		// Any check-out on an Open day closes it, even when LatestCheckOut
		// is already set (a day opened by a lone check-out) and this instant
		// is not later. Replaying that lone check-out therefore reports a
		// mutation once more: the status still moves Open -> Closed. The
		// tracked instants only ever widen.
		if agg.LatestCheckOut == nil || instant.After(*agg.LatestCheckOut) {
			out := instant
			agg.LatestCheckOut = &out
		}
		agg.Status = models.StatusClosed
		return true

	default: // Closed
		if direction == CheckIn {
			return mergeCheckIn(agg, instant)
		}
		if agg.LatestCheckOut == nil || instant.After(*agg.LatestCheckOut) {
			out := instant
			agg.LatestCheckOut = &out
			return true
		}
		return false
	}
}

func mergeCheckIn(agg *models.DailyAttendance, instant time.Time) bool {
	if agg.EarliestCheckIn == nil || instant.Before(*agg.EarliestCheckIn) {
		t := instant
		agg.EarliestCheckIn = &t
		return true
	}
	return false
}
