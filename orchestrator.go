// orchestrator.go
package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"profit_guard_go/config"
	"profit_guard_go/detect"
	"profit_guard_go/filter"
	"profit_guard_go/journal"
	"profit_guard_go/logs"
	"profit_guard_go/monitor"
	"profit_guard_go/pricegrid"
	"profit_guard_go/state"
	"profit_guard_go/task"
	"profit_guard_go/trade"
	"profit_guard_go/venue"
)

type Orchestrator struct {
	client  venue.Client
	manager *task.Manager
	janitor *monitor.Janitor
	journal *journal.Journal
	store   *state.FileStore
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	cfg     *config.Config
}

func NewOrchestrator(cfg *config.Config, envCfg *config.EnvConfig, stateFilePath string) (*Orchestrator, error) {
	var client venue.Client
	if cfg.UseSimulation {
		client = buildSimClient(cfg)
		logs.Warnf("<<<<<<<<<< WARNING: Running in simulation mode >>>>>>>>>>")
	} else {
		// Live connectivity is delivered as a separate venue.Client
		// implementation; the engine itself is venue-agnostic.
		return nil, fmt.Errorf("no live venue client is configured for account %q; set use_simulation: true or wire a venue.Client implementation", envCfg.AccountLogin)
	}

	if _, ok := client.SymbolInfo(cfg.Symbol); !ok {
		return nil, fmt.Errorf("unable to get symbol info for %s", cfg.Symbol)
	}

	store, err := state.NewFileStore(stateFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task state store: %w", err)
	}
	logs.Infof("Task state store initialized, ratchets will be persisted to: %s", stateFilePath)

	eligibility, err := buildEligibility(cfg)
	if err != nil {
		return nil, err
	}

	factory, err := buildFactory(cfg, client)
	if err != nil {
		return nil, err
	}

	jnl := journal.New()
	executor := trade.NewExecutor(client)
	provider := detect.NewPositions(client, cfg.Symbol)

	manager := task.NewManager(
		client,
		cfg.Symbol,
		provider,
		eligibility,
		factory,
		executor,
		jnl,
		store,
		cfg.Normal.DeviationPoints,
	)

	janitor, err := buildJanitor(cfg, client, executor)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		client:  client,
		manager: manager,
		janitor: janitor,
		journal: jnl,
		store:   store,
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
	}, nil
}

// buildSimClient seeds the simulated venue from the simulation block.
func buildSimClient(cfg *config.Config) *venue.SimClient {
	sim := venue.NewSimClient()
	s := cfg.Simulation

	modes := make([]venue.FillingMode, 0, len(s.FillingModes))
	for _, m := range s.FillingModes {
		modes = append(modes, venue.FillingMode(strings.ToUpper(m)))
	}

	sim.SetSymbolInfo(venue.SymbolInfo{
		Symbol:       cfg.Symbol,
		Digits:       s.Digits,
		Point:        s.Point,
		TickSize:     s.TickSize,
		VolumeMin:    s.VolumeMin,
		VolumeMax:    s.VolumeMax,
		VolumeStep:   s.VolumeStep,
		FillingModes: modes,
		TradeAllowed: true,
	})
	sim.SetTick(cfg.Symbol, s.Bid, s.Ask)

	for _, p := range s.Positions {
		side := venue.Buy
		if strings.EqualFold(p.Side, "sell") {
			side = venue.Sell
		}
		id := sim.AddPosition(venue.Position{
			Symbol:    cfg.Symbol,
			Side:      side,
			Volume:    p.Volume,
			OpenPrice: p.OpenPrice,
			StopLoss:  p.StopLoss,
		})
		logs.Infof("[Sim] Seeded %s position %s: %.2f @ %.5f", side, id, p.Volume, p.OpenPrice)
	}
	return sim
}

// buildEligibility assembles the filter chain from the optional filter block.
func buildEligibility(cfg *config.Config) (filter.Eligibility, error) {
	if cfg.Filter == nil {
		return filter.All{}, nil
	}

	var chain filter.All
	f := cfg.Filter

	if len(f.DaysAllowed) > 0 || f.SessionStart != "" {
		days, err := parseWeekdays(f.DaysAllowed)
		if err != nil {
			return nil, err
		}
		byDay := filter.NewByDayWeek(days...)
		if f.SessionStart != "" {
			start, err := parseClock(f.SessionStart)
			if err != nil {
				return nil, fmt.Errorf("invalid filter.session_start: %w", err)
			}
			end, err := parseClock(f.SessionEnd)
			if err != nil {
				return nil, fmt.Errorf("invalid filter.session_end: %w", err)
			}
			if end <= start {
				return nil, fmt.Errorf("filter session_end must be after session_start")
			}
			byDay.SessionStart = start
			byDay.SessionEnd = end
		}
		chain = append(chain, byDay)
	}

	if f.IDFile != "" {
		allow, err := filter.NewByCSVFile(f.IDFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, allow)
	}

	return chain, nil
}

// buildFactory creates the per-position task constructor from the enabled
// task list. Task order in the config is evaluation order.
func buildFactory(cfg *config.Config, client venue.Client) (task.Factory, error) {
	info, ok := client.SymbolInfo(cfg.Symbol)
	if !ok {
		return nil, fmt.Errorf("unable to get symbol info for %s", cfg.Symbol)
	}

	names := cfg.EnabledTasks
	return func(pos venue.Position) ([]task.Task, error) {
		tasks := make([]task.Task, 0, len(names))
		for _, name := range names {
			switch name {
			case "break_even":
				tasks = append(tasks, task.NewBreakEven(info, cfg.BreakEven.ActivationDistance, cfg.BreakEven.LockInOffset))
			case "break_even_stages":
				tasks = append(tasks, task.NewBreakEvenStages(info, pos, cfg.Stages.Stages))
			case "trailing_stop":
				tasks = append(tasks, task.NewTrailingStop(info, cfg.Trailing.Distance))
			default:
				return nil, fmt.Errorf("unknown task %q", name)
			}
		}
		return tasks, nil
	}, nil
}

// buildJanitor wires the pending-order sweep when order maintenance is on.
func buildJanitor(cfg *config.Config, client venue.Client, executor *trade.Executor) (*monitor.Janitor, error) {
	m := cfg.Maintenance
	if m == nil || !m.Enabled {
		return nil, nil
	}

	types := make([]venue.OrderType, 0, len(m.RemoveOrderTypes))
	for _, t := range m.RemoveOrderTypes {
		ot := venue.OrderType(strings.ToUpper(t))
		switch ot {
		case venue.BuyLimit, venue.SellLimit, venue.BuyStop, venue.SellStop:
			types = append(types, ot)
		default:
			return nil, fmt.Errorf("order_maintenance: unknown order type %q", t)
		}
	}

	var lines *pricegrid.Generator
	if m.UsePriceLines {
		g, err := pricegrid.NewGenerator(*cfg.PriceLines)
		if err != nil {
			return nil, err
		}
		lines = g
	}

	return monitor.NewJanitor(client, executor, cfg.Symbol, types, lines, m.BandMarginLines), nil
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	byName := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
		"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	}
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if len(key) > 3 {
			key = key[:3]
		}
		d, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("filter.days_allowed: unknown weekday %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

// parseClock converts "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

func (o *Orchestrator) Start() {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		monitor.Start(o.manager, o.janitor, o.journal, o.cfg, o.ctx.Done())
	}()
	logs.Infof("Engine for %s started, press Ctrl+C to exit.", o.cfg.Symbol)
}

func (o *Orchestrator) Stop() {
	logs.Info("Received close signal, starting graceful shutdown...")

	o.cancel()
	o.wg.Wait()

	o.printFinalSummary()
	logs.Info("All services stopped successfully.")
}

func (o *Orchestrator) printFinalSummary() {
	totals := o.journal.Totals()
	logs.Info("\n--- Final Run Summary ---")
	logs.Infof("Cycles executed: %d", totals.Cycles)
	logs.Infof("Decisions submitted: %d (%d succeeded, %d failed)", totals.Submitted, totals.Succeeded, totals.Failed)

	positions, err := o.client.Positions(o.cfg.Symbol)
	if err != nil {
		logs.Errorf("Failed to enumerate positions for summary: %v", err)
	} else {
		logs.Infof("Open positions remaining: %d", len(positions))
		for _, p := range positions {
			logs.Infof("  %s %s %.2f @ %.5f (SL %.5f, TP %.5f)", p.ID, p.Side, p.Volume, p.OpenPrice, p.StopLoss, p.TakeProfit)
		}
	}
	logs.Info("--------------------")
}
