package filter

import "profit_guard_go/venue"

// OrderSelector picks pending orders that should be removed from the book.
// Selectors only select; issuing the cancel requests is the caller's job.
type OrderSelector interface {
	Select(orders []venue.Order) []venue.Order
}

// RemoveByOrderType selects every pending order of the given types.
type RemoveByOrderType struct {
	Types []venue.OrderType
}

func (r RemoveByOrderType) Select(orders []venue.Order) []venue.Order {
	if len(r.Types) == 0 {
		return nil
	}
	wanted := make(map[venue.OrderType]bool, len(r.Types))
	for _, t := range r.Types {
		wanted[t] = true
	}
	var out []venue.Order
	for _, o := range orders {
		if wanted[o.Type] {
			out = append(out, o)
		}
	}
	return out
}

// RemoveByLocationPrice selects pending orders priced outside [Lower, Upper].
type RemoveByLocationPrice struct {
	Upper float64
	Lower float64
}

func (r RemoveByLocationPrice) Select(orders []venue.Order) []venue.Order {
	var out []venue.Order
	for _, o := range orders {
		if o.Price > r.Upper || o.Price < r.Lower {
			out = append(out, o)
		}
	}
	return out
}
