// monitor/monitor.go
package monitor

import (
	"context"
	"time"

	"profit_guard_go/config"
	"profit_guard_go/journal"
	"profit_guard_go/logs"
	"profit_guard_go/task"
)

// Start runs the main loop of the engine: one full scheduling cycle per tick
// interval, followed by the pending-order sweep when one is configured.
// Cycles never overlap; a cycle runs to completion before the next tick is
// taken, and a slow cycle simply delays the next one.
func Start(
	manager *task.Manager,
	janitor *Janitor,
	jnl *journal.Journal,
	cfg *config.Config,
	stopChan <-chan struct{},
) {
	ticker := time.NewTicker(time.Duration(cfg.Normal.TickIntervalSeconds) * time.Second)
	defer ticker.Stop()

	lastHeartbeat := time.Now()
	heartbeatInterval := time.Duration(cfg.Normal.HeartbeatIntervalMinutes) * time.Minute

	for {
		select {
		case <-stopChan:
			logs.Info("Monitor received stop signal, exiting.")
			return
		case <-ticker.C:
			report, err := manager.RunCycle(context.Background())
			if err != nil {
				// A failed cycle is skipped whole; membership and ratchet
				// state are untouched and the next tick retries.
				logs.Errorf("[Monitor] Cycle failed: %v", err)
				continue
			}

			if report.Failed > 0 {
				logs.Warnf("[Monitor] Cycle %d finished with %d failed submission(s).", report.Cycle, report.Failed)
			}

			if janitor != nil {
				if _, err := janitor.Sweep(context.Background()); err != nil {
					logs.Errorf("[Monitor] Order sweep failed: %v", err)
				}
			}

			if time.Since(lastHeartbeat) >= heartbeatInterval {
				totals := jnl.Totals()
				logs.Infof("[Heartbeat] Engine running. Cycles: %d, submissions: %d ok / %d failed.",
					report.Cycle, totals.Succeeded, totals.Failed)
				lastHeartbeat = time.Now()
			}
		}
	}
}
