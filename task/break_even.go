// task/break_even.go
package task

import (
	"fmt"

	"profit_guard_go/calc"
	"profit_guard_go/state"
	"profit_guard_go/utils"
	"profit_guard_go/venue"
)

// BreakEven moves the stop-loss to the open price (plus a small lock-in
// offset) once the favorable excursion reaches the activation distance. The
// transition is one-shot: once armed, the task never proposes again.
type BreakEven struct {
	ProfitProtection

	// ActivationDistance is the favorable excursion (price units) required
	// before the stop is moved.
	ActivationDistance float64
	// LockInOffset shifts the new stop past the open price in the protective
	// direction; zero means exactly break-even.
	LockInOffset float64

	armed bool
}

// NewBreakEven creates a break-even task for one position.
func NewBreakEven(info venue.SymbolInfo, activationDistance, lockInOffset float64) *BreakEven {
	return &BreakEven{
		ProfitProtection:   ProfitProtection{info: info},
		ActivationDistance: activationDistance,
		LockInOffset:       lockInOffset,
	}
}

func (b *BreakEven) Name() string { return "break_even" }

// Armed reports whether the break-even stop has been applied.
func (b *BreakEven) Armed() bool { return b.armed }

func (b *BreakEven) Evaluate(pos venue.Position, tick venue.Tick) (Decision, error) {
	if b.ActivationDistance <= 0 {
		return nil, fmt.Errorf("%w: break_even activation_distance must be positive", ErrInvalidConfiguration)
	}
	if b.LockInOffset < 0 {
		return nil, fmt.Errorf("%w: break_even lock_in_offset cannot be negative", ErrInvalidConfiguration)
	}

	if b.armed {
		return &NoAction{Reason: "break-even already applied"}, nil
	}

	// An excursion exactly equal to the activation distance counts as reached.
	if b.favorableExcursion(pos, tick) < b.ActivationDistance-utils.Epsilon {
		return &NoAction{Reason: "activation distance not reached"}, nil
	}

	target := calc.ProtectivePrice(pos.Side, pos.OpenPrice, b.LockInOffset, b.info)
	if !b.tighter(pos.Side, target, b.currentStop(pos)) {
		return &NoAction{Reason: "stop already at or beyond break-even"}, nil
	}

	return &ModifyStop{Price: target}, nil
}

func (b *BreakEven) Apply(d Decision) {
	if ms, ok := d.(*ModifyStop); ok {
		b.armed = true
		b.lastAppliedStop = ms.Price
	}
}

func (b *BreakEven) CaptureState() state.TaskState {
	return state.TaskState{
		LastAppliedStop: b.lastAppliedStop,
		Armed:           b.armed,
		StageIndex:      -1,
	}
}

func (b *BreakEven) RestoreState(st state.TaskState) {
	b.lastAppliedStop = st.LastAppliedStop
	b.armed = st.Armed
}
