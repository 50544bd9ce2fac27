// Package detect enumerates the working set the engine evaluates each cycle:
// open positions and resting pending orders for one instrument.
package detect

import (
	"fmt"

	"profit_guard_go/logs"
	"profit_guard_go/venue"
)

// Positions enumerates open positions for a single instrument.
type Positions struct {
	client venue.Client
	symbol string
}

// NewPositions creates a position detector bound to one instrument.
func NewPositions(client venue.Client, symbol string) *Positions {
	return &Positions{client: client, symbol: symbol}
}

// List returns the current open positions. An empty book is not an error;
// the scheduler must tolerate it.
func (d *Positions) List() ([]venue.Position, error) {
	positions, err := d.client.Positions(d.symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate positions for %s: %w", d.symbol, err)
	}
	logs.Debugf("[Detect] %d open position(s) for %s", len(positions), d.symbol)
	return positions, nil
}

// Orders enumerates resting pending orders for a single instrument.
type Orders struct {
	client venue.Client
	symbol string
}

// NewOrders creates a pending-order detector bound to one instrument.
func NewOrders(client venue.Client, symbol string) *Orders {
	return &Orders{client: client, symbol: symbol}
}

// List returns the current pending orders, oldest first.
func (d *Orders) List() ([]venue.Order, error) {
	orders, err := d.client.Orders(d.symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate orders for %s: %w", d.symbol, err)
	}
	logs.Debugf("[Detect] %d pending order(s) for %s", len(orders), d.symbol)
	return orders, nil
}
