// task/profit_protection.go
package task

import (
	"profit_guard_go/utils"
	"profit_guard_go/venue"
)

// ProfitProtection is the shared base of the stop-tightening task family.
// It holds the instrument rules and the last stop the venue confirmed, and
// provides the direction-aware comparisons every variant needs. The central
// invariant of the family: no transition ever moves backward in protection
// strength.
type ProfitProtection struct {
	info            venue.SymbolInfo
	lastAppliedStop float64 // 0 = nothing applied yet
}

// LastAppliedStop returns the last stop price committed through Apply.
func (p *ProfitProtection) LastAppliedStop() float64 {
	return p.lastAppliedStop
}

// favorableExcursion is the distance price has moved in the position's
// profitable direction since entry. Longs exit at bid, shorts at ask.
func (p *ProfitProtection) favorableExcursion(pos venue.Position, tick venue.Tick) float64 {
	if pos.Side == venue.Buy {
		return tick.Bid - pos.OpenPrice
	}
	return pos.OpenPrice - tick.Ask
}

// tighter reports whether candidate is strictly more protective than current
// for the given direction. A current of 0 means no stop is set, so any
// candidate tightens.
func (p *ProfitProtection) tighter(side venue.Side, candidate, current float64) bool {
	if current == 0 {
		return candidate != 0
	}
	if side == venue.Buy {
		return candidate > current+utils.Epsilon
	}
	return candidate < current-utils.Epsilon
}

// currentStop returns the effective protection level: the more protective of
// the venue-reported stop and the last stop this task applied. The venue copy
// can lag a cycle behind; the ratchet must never compare against the looser
// of the two.
func (p *ProfitProtection) currentStop(pos venue.Position) float64 {
	venueStop := pos.StopLoss
	if p.lastAppliedStop == 0 {
		return venueStop
	}
	if venueStop == 0 {
		return p.lastAppliedStop
	}
	if pos.Side == venue.Buy {
		if p.lastAppliedStop > venueStop {
			return p.lastAppliedStop
		}
		return venueStop
	}
	if p.lastAppliedStop < venueStop {
		return p.lastAppliedStop
	}
	return venueStop
}
