// Package task implements the risk-management rules the engine evaluates
// against open positions, and the manager that schedules them. A task binds
// one rule configuration to one position and survives across evaluation
// cycles, carrying path-dependent ratchet state (armed flags, stage indexes,
// best favorable price).
package task

import (
	"errors"

	"profit_guard_go/state"
	"profit_guard_go/venue"
)

// ErrInvalidConfiguration marks a configuration-time fault: missing or
// non-monotonic parameters. It is reported once and the task is disabled for
// its position; it is never retried.
var ErrInvalidConfiguration = errors.New("invalid task configuration")

// Task is the capability every rule variant implements.
//
// Evaluate is a pure function of position, quote and the task's current
// state: evaluating twice with identical inputs and no intervening Apply
// yields the same Decision. The single documented exception is trailing-stop
// best-price tracking, which updates on observation because it records a
// market fact, not an order state.
//
// Apply commits the internal state change implied by a decision. The manager
// calls it only after the venue confirmed the submission, so a failed
// submission never advances ratchet state.
type Task interface {
	Name() string
	Evaluate(pos venue.Position, tick venue.Tick) (Decision, error)
	Apply(d Decision)
}

// Stateful is implemented by tasks whose ratchet state can be captured for
// persistence and restored after a restart.
type Stateful interface {
	CaptureState() state.TaskState
	RestoreState(st state.TaskState)
}
