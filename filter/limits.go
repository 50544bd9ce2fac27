package filter

import (
	"time"

	"profit_guard_go/venue"
)

// Prices is a price ceiling/floor pair derived from the current order book.
type Prices struct {
	Upper float64
	Lower float64
}

// LimitsByIndex derives the ceiling/floor from the first Count pending orders
// (oldest first). A Count of zero considers every order.
type LimitsByIndex struct {
	Count int
}

// Calculate returns the min/max prices across the considered orders.
// ok is false when there are no orders to derive limits from.
func (l LimitsByIndex) Calculate(orders []venue.Order) (Prices, bool) {
	n := len(orders)
	if l.Count > 0 && l.Count < n {
		n = l.Count
	}
	return priceBounds(orders[:n])
}

// LimitsByTimeRange derives the ceiling/floor from the pending orders placed
// within [From, To].
type LimitsByTimeRange struct {
	From time.Time
	To   time.Time
}

// Calculate returns the min/max prices across orders placed in the range.
func (l LimitsByTimeRange) Calculate(orders []venue.Order) (Prices, bool) {
	inRange := make([]venue.Order, 0, len(orders))
	for _, o := range orders {
		if o.PlacedTime.Before(l.From) || o.PlacedTime.After(l.To) {
			continue
		}
		inRange = append(inRange, o)
	}
	return priceBounds(inRange)
}

func priceBounds(orders []venue.Order) (Prices, bool) {
	if len(orders) == 0 {
		return Prices{}, false
	}
	p := Prices{Upper: orders[0].Price, Lower: orders[0].Price}
	for _, o := range orders[1:] {
		if o.Price > p.Upper {
			p.Upper = o.Price
		}
		if o.Price < p.Lower {
			p.Lower = o.Price
		}
	}
	return p, true
}
