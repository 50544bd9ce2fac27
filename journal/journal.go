// Package journal records every decision the engine submits and its outcome.
// It is the in-memory diagnostics trail behind per-cycle reports: which task
// acted on which position, how many venue attempts it took, and how it ended.
package journal

import (
	"sync"
	"time"

	"profit_guard_go/trade"
)

// Entry is one submitted decision with its terminal outcome.
type Entry struct {
	Cycle      int64
	PositionID string
	Task       string
	Decision   string
	Result     trade.OrderResult
	Attempts   int
	Comment    string
	Time       time.Time
}

// Totals aggregates the journal for reporting.
type Totals struct {
	Cycles    int64
	Submitted int
	Succeeded int
	Failed    int
}

// Journal is a thread-safe append-only record of engine activity.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	lastOut map[string]Entry // positionID -> most recent entry
	cycles  int64
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{
		entries: make([]Entry, 0),
		lastOut: make(map[string]Entry),
	}
}

// BeginCycle bumps and returns the cycle counter.
func (j *Journal) BeginCycle() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cycles++
	return j.cycles
}

// Record appends one entry.
func (j *Journal) Record(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	j.lastOut[e.PositionID] = e
}

// LastOutcome returns the most recent entry for a position.
func (j *Journal) LastOutcome(positionID string) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.lastOut[positionID]
	return e, ok
}

// Totals returns aggregate counts over the whole run.
func (j *Journal) Totals() Totals {
	j.mu.Lock()
	defer j.mu.Unlock()
	t := Totals{Cycles: j.cycles, Submitted: len(j.entries)}
	for _, e := range j.entries {
		if e.Result == trade.OrderPlacedSuccessfully {
			t.Succeeded++
		} else {
			t.Failed++
		}
	}
	return t
}

// History returns a copy of every recorded entry.
func (j *Journal) History() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}
