// task/trailing_stop.go
package task

import (
	"fmt"

	"profit_guard_go/calc"
	"profit_guard_go/state"
	"profit_guard_go/venue"
)

// TrailingStop keeps the stop a fixed distance behind the best favorable
// price seen so far. Both ratchets are monotonic: the best price only moves
// in the favorable direction, and the stop only tightens.
type TrailingStop struct {
	ProfitProtection

	// Distance between the best favorable price and the proposed stop,
	// in price units.
	Distance float64

	best float64 // best favorable price observed, 0 = none yet
}

// NewTrailingStop creates a trailing-stop task for one position.
func NewTrailingStop(info venue.SymbolInfo, distance float64) *TrailingStop {
	return &TrailingStop{
		ProfitProtection: ProfitProtection{info: info},
		Distance:         distance,
	}
}

func (t *TrailingStop) Name() string { return "trailing_stop" }

// BestPrice returns the best favorable price observed so far.
func (t *TrailingStop) BestPrice() float64 { return t.best }

func (t *TrailingStop) Evaluate(pos venue.Position, tick venue.Tick) (Decision, error) {
	if t.Distance <= 0 {
		return nil, fmt.Errorf("%w: trailing_stop distance must be positive", ErrInvalidConfiguration)
	}

	// Best-price tracking updates on observation regardless of what happens
	// to the submission afterwards: it records a market fact, not an order
	// state. Longs exit at bid, shorts at ask.
	market := tick.Bid
	if pos.Side == venue.Sell {
		market = tick.Ask
	}
	if t.best == 0 {
		t.best = market
	} else if pos.Side == venue.Buy && market > t.best {
		t.best = market
	} else if pos.Side == venue.Sell && market < t.best {
		t.best = market
	}

	candidate := calc.StopPrice(pos.Side, t.best, t.Distance, t.info)
	if !t.tighter(pos.Side, candidate, t.currentStop(pos)) {
		return &NoAction{Reason: "trailing stop would not tighten"}, nil
	}

	return &ModifyStop{Price: candidate}, nil
}

func (t *TrailingStop) Apply(d Decision) {
	if ms, ok := d.(*ModifyStop); ok {
		t.lastAppliedStop = ms.Price
	}
}

func (t *TrailingStop) CaptureState() state.TaskState {
	return state.TaskState{
		LastAppliedStop: t.lastAppliedStop,
		Armed:           t.lastAppliedStop != 0,
		StageIndex:      -1,
		BestPrice:       t.best,
	}
}

func (t *TrailingStop) RestoreState(st state.TaskState) {
	t.lastAppliedStop = st.LastAppliedStop
	t.best = st.BestPrice
}
