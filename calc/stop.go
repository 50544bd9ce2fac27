// Package calc provides the pure price/volume arithmetic consumed by the
// protection tasks and the request validation layer. All functions are free
// of side effects: inputs in, value or error out.
package calc

import (
	"profit_guard_go/utils"
	"profit_guard_go/venue"
)

// StopPrice computes a stop-loss price at the given distance from base,
// direction-adjusted and snapped to the instrument's tick size.
// For a long position the stop sits below base, for a short above.
func StopPrice(side venue.Side, base, distance float64, info venue.SymbolInfo) float64 {
	var price float64
	if side == venue.Buy {
		price = base - distance
	} else {
		price = base + distance
	}
	return utils.AdjustPriceToTickSize(price, info.TickSize)
}

// TakeProfitPrice computes a take-profit price at the given distance from
// base, direction-adjusted and snapped to the instrument's tick size.
func TakeProfitPrice(side venue.Side, base, distance float64, info venue.SymbolInfo) float64 {
	var price float64
	if side == venue.Buy {
		price = base + distance
	} else {
		price = base - distance
	}
	return utils.AdjustPriceToTickSize(price, info.TickSize)
}

// ProtectivePrice offsets base in the protective direction (toward profit
// lock-in) and snaps to tick size. Used for break-even targets, where the
// offset moves the stop past the open price rather than away from it.
func ProtectivePrice(side venue.Side, base, offset float64, info venue.SymbolInfo) float64 {
	var price float64
	if side == venue.Buy {
		price = base + offset
	} else {
		price = base - offset
	}
	return utils.AdjustPriceToTickSize(price, info.TickSize)
}
