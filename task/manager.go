// task/manager.go
package task

import (
	"context"
	"errors"
	"fmt"

	"profit_guard_go/filter"
	"profit_guard_go/journal"
	"profit_guard_go/logs"
	"profit_guard_go/state"
	"profit_guard_go/trade"
	"profit_guard_go/venue"
)

// PositionProvider supplies the working set each cycle. detect.Positions
// satisfies it.
type PositionProvider interface {
	List() ([]venue.Position, error)
}

// Factory creates the task instances for a newly eligible position, in
// registration order.
type Factory func(pos venue.Position) ([]Task, error)

// Outcome is the result of one (position, task) evaluation that produced a
// decision other than NoAction, or that failed.
type Outcome struct {
	PositionID string
	Task       string
	Decision   string
	Result     trade.OrderResult
	Attempts   int
	Comment    string
	Err        error
}

// CycleReport aggregates one scheduling tick.
type CycleReport struct {
	Cycle     int64
	Positions int
	Evaluated int
	Submitted int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// binding ties one task instance to its position. A task disabled by a
// configuration fault stays registered but is skipped until the position
// leaves the set.
type binding struct {
	task     Task
	disabled bool
}

// Manager owns the task registry and drives one evaluation pass per tick.
//
// Per tick it reconciles registry membership against the current position
// set (create on eligibility, drop on close or filter-out — dropping loses
// ratchet state by design), then evaluates every bound task sequentially in
// registration order. A decision is submitted through the transaction layer,
// and the task's Apply runs only on a confirmed success, so a rejected
// submission never advances a ratchet. A failure in one (position, task)
// pair never aborts the rest of the cycle.
//
// When two tasks target the same field of the same position within a cycle,
// the later registration wins. That is preserved source behavior, not
// arbitration.
type Manager struct {
	client      venue.Client
	symbol      string
	provider    PositionProvider
	eligibility filter.Eligibility
	factory     Factory
	executor    *trade.Executor
	journal     *journal.Journal
	store       state.Store // may be nil
	deviation   int         // points, stamped on every request

	tasks map[string][]*binding
}

// NewManager wires a task manager for one instrument. store may be nil when
// ratchet persistence across restarts is not wanted.
func NewManager(
	client venue.Client,
	symbol string,
	provider PositionProvider,
	eligibility filter.Eligibility,
	factory Factory,
	executor *trade.Executor,
	jnl *journal.Journal,
	store state.Store,
	deviationPoints int,
) *Manager {
	if eligibility == nil {
		eligibility = filter.All{}
	}
	return &Manager{
		client:      client,
		symbol:      symbol,
		provider:    provider,
		eligibility: eligibility,
		factory:     factory,
		executor:    executor,
		journal:     jnl,
		store:       store,
		deviation:   deviationPoints,
		tasks:       make(map[string][]*binding),
	}
}

// ActiveTaskCount returns how many task instances are bound to a position.
func (m *Manager) ActiveTaskCount(positionID string) int {
	return len(m.tasks[positionID])
}

// RunCycle executes one scheduling tick: reconcile, evaluate, submit, commit.
// It runs to completion before the next tick may start; the engine never
// executes two cycles concurrently.
func (m *Manager) RunCycle(ctx context.Context) (*CycleReport, error) {
	cycle := m.journal.BeginCycle()

	tick, err := m.client.Tick(m.symbol)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: failed to get quote: %w", cycle, err)
	}

	positions, err := m.provider.List()
	if err != nil {
		return nil, fmt.Errorf("cycle %d: failed to list positions: %w", cycle, err)
	}

	report := &CycleReport{Cycle: cycle, Positions: len(positions)}

	m.reconcile(positions)

	for _, pos := range positions {
		bindings, ok := m.tasks[pos.ID]
		if !ok {
			continue // not eligible this cycle
		}
		for _, b := range bindings {
			if b.disabled {
				continue
			}
			m.runTask(ctx, pos, tick, b, report)
		}
	}

	logs.Debugf("[TaskManager] Cycle %d: %d position(s), %d evaluated, %d submitted, %d ok, %d failed",
		cycle, report.Positions, report.Evaluated, report.Submitted, report.Succeeded, report.Failed)
	return report, nil
}

// reconcile aligns registry membership with the live position set.
func (m *Manager) reconcile(positions []venue.Position) {
	live := make(map[string]venue.Position, len(positions))
	for _, p := range positions {
		live[p.ID] = p
	}

	for id := range m.tasks {
		pos, ok := live[id]
		if ok && m.eligibility.IsEligible(pos) {
			continue
		}
		delete(m.tasks, id)
		if m.store != nil {
			if err := m.store.Forget(id); err != nil {
				logs.Errorf("[TaskManager] Failed to forget state for position %s: %v", id, err)
			}
		}
		if !ok {
			logs.Infof("[TaskManager] Position %s closed, task(s) removed.", id)
		} else {
			// Filter-out discards ratchet state with the tasks.
			logs.Infof("[TaskManager] Position %s no longer eligible, task(s) and state dropped.", id)
		}
	}

	for _, pos := range positions {
		if _, exists := m.tasks[pos.ID]; exists {
			continue
		}
		if !m.eligibility.IsEligible(pos) {
			continue
		}
		created, err := m.factory(pos)
		if err != nil {
			logs.Errorf("[TaskManager] Failed to create task(s) for position %s: %v", pos.ID, err)
			continue
		}
		if len(created) == 0 {
			continue
		}
		bindings := make([]*binding, 0, len(created))
		for _, t := range created {
			m.restoreState(pos.ID, t)
			bindings = append(bindings, &binding{task: t})
		}
		m.tasks[pos.ID] = bindings
		logs.Infof("[TaskManager] Position %s eligible, %d task(s) registered.", pos.ID, len(bindings))
	}
}

func (m *Manager) restoreState(positionID string, t Task) {
	if m.store == nil {
		return
	}
	st, ok := m.store.Get(positionID, t.Name())
	if !ok {
		return
	}
	if s, can := t.(Stateful); can {
		s.RestoreState(st)
		logs.Infof("[TaskManager] Restored %s state for position %s (stop %.5f).", t.Name(), positionID, st.LastAppliedStop)
	}
}

func (m *Manager) persistState(positionID string, t Task) {
	if m.store == nil {
		return
	}
	s, can := t.(Stateful)
	if !can {
		return
	}
	if err := m.store.Put(positionID, t.Name(), s.CaptureState()); err != nil {
		logs.Errorf("[TaskManager] Failed to persist %s state for position %s: %v", t.Name(), positionID, err)
	}
}

// runTask evaluates one binding and, when warranted, submits its decision.
func (m *Manager) runTask(ctx context.Context, pos venue.Position, tick venue.Tick, b *binding, report *CycleReport) {
	report.Evaluated++

	decision, err := b.task.Evaluate(pos, tick)
	if err != nil {
		if errors.Is(err, ErrInvalidConfiguration) {
			// Configuration faults are reported once; the task stays disabled
			// until the position is reconfigured.
			b.disabled = true
			logs.Errorf("[TaskManager] Task %s on position %s disabled: %v", b.task.Name(), pos.ID, err)
		} else {
			logs.Errorf("[TaskManager] Task %s on position %s failed to evaluate: %v", b.task.Name(), pos.ID, err)
		}
		report.Outcomes = append(report.Outcomes, Outcome{
			PositionID: pos.ID,
			Task:       b.task.Name(),
			Err:        err,
		})
		return
	}

	if _, idle := decision.(*NoAction); idle {
		return
	}

	req := m.buildRequest(pos, b.task, decision)
	if req == nil {
		logs.Warnf("[TaskManager] Task %s produced unsupported decision %T, ignored.", b.task.Name(), decision)
		return
	}

	tx := m.executor.Execute(ctx, req)
	report.Submitted++

	outcome := Outcome{
		PositionID: pos.ID,
		Task:       b.task.Name(),
		Decision:   decision.Description(),
		Result:     tx.Result(),
		Attempts:   len(tx.Attempts()),
		Comment:    tx.Comment(),
	}

	if tx.Succeeded() {
		report.Succeeded++
		// Two-phase commit: ratchet state advances only on confirmed success.
		b.task.Apply(decision)
		m.persistState(pos.ID, b.task)
	} else {
		report.Failed++
		logs.Warnf("[TaskManager] %s on position %s not applied: %s", decision.Description(), pos.ID, tx.Comment())
	}

	m.journal.Record(journal.Entry{
		Cycle:      report.Cycle,
		PositionID: pos.ID,
		Task:       b.task.Name(),
		Decision:   decision.Description(),
		Result:     tx.Result(),
		Attempts:   len(tx.Attempts()),
		Comment:    tx.Comment(),
	})
	report.Outcomes = append(report.Outcomes, outcome)
}

// buildRequest translates a decision into a venue request. Unset prices stay
// zero, which the venue reads as "leave unchanged".
func (m *Manager) buildRequest(pos venue.Position, t Task, decision Decision) *trade.Request {
	var req *trade.Request
	switch d := decision.(type) {
	case *ModifyStop:
		req = trade.NewRequest(venue.ActionModifyPosition, m.symbol)
		req.StopLoss = d.Price
	case *ModifyTakeProfit:
		req = trade.NewRequest(venue.ActionModifyPosition, m.symbol)
		req.TakeProfit = d.Price
	case *ClosePosition:
		req = trade.NewRequest(venue.ActionClosePosition, m.symbol)
		req.Volume = pos.Volume
	case *ClosePartial:
		req = trade.NewRequest(venue.ActionPartialClose, m.symbol)
		req.Volume = d.Volume
	default:
		return nil
	}
	req.PositionID = pos.ID
	req.Side = pos.Side
	req.Deviation = m.deviation
	req.Comment = t.Name()
	return req
}
