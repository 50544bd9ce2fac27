// Package filter holds the eligibility predicates consulted during task-set
// reconciliation, plus the pending-order selectors used by order maintenance.
// Every predicate is pure: it is re-evaluated each cycle, and a position that
// stops passing loses its task (and the task's ratchet state) on that cycle.
package filter

import (
	"time"

	"profit_guard_go/venue"
)

// Eligibility decides whether a position should have tasks bound to it.
type Eligibility interface {
	IsEligible(pos venue.Position) bool
}

// All combines predicates with AND semantics. An empty chain accepts all.
type All []Eligibility

func (a All) IsEligible(pos venue.Position) bool {
	for _, f := range a {
		if !f.IsEligible(pos) {
			return false
		}
	}
	return true
}

// ByDayWeek accepts positions only on the configured weekdays, optionally
// restricted to a daily session window.
type ByDayWeek struct {
	Allowed map[time.Weekday]bool
	// Session window within the day; both zero means the whole day.
	SessionStart time.Duration
	SessionEnd   time.Duration
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// NewByDayWeek builds a weekday filter from a list of allowed weekdays.
func NewByDayWeek(days ...time.Weekday) *ByDayWeek {
	allowed := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		allowed[d] = true
	}
	return &ByDayWeek{Allowed: allowed}
}

func (f *ByDayWeek) IsEligible(venue.Position) bool {
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	if len(f.Allowed) > 0 && !f.Allowed[now.Weekday()] {
		return false
	}
	if f.SessionStart == 0 && f.SessionEnd == 0 {
		return true
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(midnight)
	return elapsed >= f.SessionStart && elapsed < f.SessionEnd
}
