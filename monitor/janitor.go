// monitor/janitor.go
package monitor

import (
	"context"

	"profit_guard_go/detect"
	"profit_guard_go/filter"
	"profit_guard_go/logs"
	"profit_guard_go/pricegrid"
	"profit_guard_go/trade"
	"profit_guard_go/venue"
)

// Janitor sweeps the pending-order book after each cycle and cancels orders
// that maintenance rules select: unwanted order types, or orders resting
// outside the price-ladder band around the current quote.
type Janitor struct {
	client   venue.Client
	orders   *detect.Orders
	executor *trade.Executor
	symbol   string

	byType filter.RemoveByOrderType
	lines  *pricegrid.Generator // nil disables band maintenance
	margin int                  // extra ladder steps around the band
}

// NewJanitor wires an order sweep. types may be empty and lines may be nil;
// a janitor with neither rule selects nothing.
func NewJanitor(client venue.Client, executor *trade.Executor, symbol string, types []venue.OrderType, lines *pricegrid.Generator, bandMargin int) *Janitor {
	return &Janitor{
		client:   client,
		orders:   detect.NewOrders(client, symbol),
		executor: executor,
		symbol:   symbol,
		byType:   filter.RemoveByOrderType{Types: types},
		lines:    lines,
		margin:   bandMargin,
	}
}

// Sweep runs one maintenance pass and returns how many cancels succeeded.
// A failed cancel is logged and left for the next sweep.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	orders, err := j.orders.List()
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	selected := make(map[string]venue.Order)
	for _, o := range j.byType.Select(orders) {
		selected[o.ID] = o
	}

	if j.lines != nil {
		tick, err := j.client.Tick(j.symbol)
		if err != nil {
			return 0, err
		}
		mid := (tick.Bid + tick.Ask) / 2
		if upper, lower, ok := j.lines.Band(mid, j.margin); ok {
			sel := filter.RemoveByLocationPrice{Upper: upper, Lower: lower}
			for _, o := range sel.Select(orders) {
				selected[o.ID] = o
			}
		} else {
			logs.Warnf("[Janitor] Quote %.5f is outside the configured price ladder, band sweep skipped.", mid)
		}
	}

	cancelled := 0
	for _, o := range selected {
		req := trade.NewRequest(venue.ActionCancelPending, j.symbol)
		req.OrderID = o.ID
		req.OrderType = o.Type

		tx := j.executor.Execute(ctx, req)
		if tx.Succeeded() {
			cancelled++
			logs.Infof("[Janitor] Cancelled pending order %s (%s @ %.5f).", o.ID, o.Type, o.Price)
		} else {
			logs.Warnf("[Janitor] Failed to cancel pending order %s: %s", o.ID, tx.Comment())
		}
	}
	return cancelled, nil
}
