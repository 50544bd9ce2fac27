// task/break_even_stages.go
package task

import (
	"fmt"

	"profit_guard_go/calc"
	"profit_guard_go/state"
	"profit_guard_go/utils"
	"profit_guard_go/venue"
)

// Stage is one (trigger, stop) pair: when the favorable excursion reaches
// Trigger, the stop moves Stop past the open price in the protective
// direction. Both are price distances.
type Stage struct {
	Trigger float64 `yaml:"trigger"`
	Stop    float64 `yaml:"stop"`
}

// BreakEvenStages tightens the stop through an ordered stage table. The
// stage index is a monotonic ratchet: it only advances, and a retrace never
// regresses an applied stage. An excursion exactly equal to a trigger counts
// as reached.
type BreakEvenStages struct {
	ProfitProtection

	Stages []Stage

	side      venue.Side
	openPrice float64
	applied   int // index of the last applied stage, -1 for none
}

// NewBreakEvenStages creates a staged break-even task bound to one position.
// The position's side and open price are fixed for the task's lifetime.
func NewBreakEvenStages(info venue.SymbolInfo, pos venue.Position, stages []Stage) *BreakEvenStages {
	return &BreakEvenStages{
		ProfitProtection: ProfitProtection{info: info},
		Stages:           stages,
		side:             pos.Side,
		openPrice:        pos.OpenPrice,
		applied:          -1,
	}
}

func (b *BreakEvenStages) Name() string { return "break_even_stages" }

// AppliedStage returns the index of the last applied stage, -1 for none.
func (b *BreakEvenStages) AppliedStage() int { return b.applied }

func (b *BreakEvenStages) checkStages() error {
	if len(b.Stages) == 0 {
		return fmt.Errorf("%w: break_even_stages requires at least one stage", ErrInvalidConfiguration)
	}
	for i, s := range b.Stages {
		if s.Trigger <= 0 {
			return fmt.Errorf("%w: stage %d trigger must be positive", ErrInvalidConfiguration, i)
		}
		if i > 0 {
			if s.Trigger <= b.Stages[i-1].Trigger {
				return fmt.Errorf("%w: stage table must be sorted ascending by trigger", ErrInvalidConfiguration)
			}
			if s.Stop < b.Stages[i-1].Stop {
				return fmt.Errorf("%w: stage stops must be non-decreasing", ErrInvalidConfiguration)
			}
		}
	}
	return nil
}

// stagePrice is the stop price stage i resolves to for the bound position.
func (b *BreakEvenStages) stagePrice(i int) float64 {
	return calc.ProtectivePrice(b.side, b.openPrice, b.Stages[i].Stop, b.info)
}

func (b *BreakEvenStages) Evaluate(pos venue.Position, tick venue.Tick) (Decision, error) {
	if err := b.checkStages(); err != nil {
		return nil, err
	}

	excursion := b.favorableExcursion(pos, tick)

	reached := -1
	for i, s := range b.Stages {
		if excursion >= s.Trigger-utils.Epsilon {
			reached = i
		}
	}

	if reached <= b.applied {
		return &NoAction{Reason: "no new stage reached"}, nil
	}

	target := b.stagePrice(reached)
	if !b.tighter(pos.Side, target, b.currentStop(pos)) {
		return &NoAction{Reason: "stop already beyond reached stage"}, nil
	}

	return &ModifyStop{Price: target}, nil
}

func (b *BreakEvenStages) Apply(d Decision) {
	ms, ok := d.(*ModifyStop)
	if !ok {
		return
	}
	// Advance to the highest stage the confirmed price corresponds to.
	for i := len(b.Stages) - 1; i > b.applied; i-- {
		if utils.FloatEquals(b.stagePrice(i), ms.Price) {
			b.applied = i
			break
		}
	}
	b.lastAppliedStop = ms.Price
}

func (b *BreakEvenStages) CaptureState() state.TaskState {
	return state.TaskState{
		LastAppliedStop: b.lastAppliedStop,
		Armed:           b.applied >= 0,
		StageIndex:      b.applied,
	}
}

func (b *BreakEvenStages) RestoreState(st state.TaskState) {
	b.lastAppliedStop = st.LastAppliedStop
	b.applied = st.StageIndex
}
