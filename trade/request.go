// Package trade implements the order-transaction protocol: a Request is a
// validated, single-use description of one desired venue action, and a
// Transaction carries exactly one Request through submission with bounded
// filling-mode fallback.
package trade

import (
	"profit_guard_go/calc"
	"profit_guard_go/logs"
	"profit_guard_go/utils"
	"profit_guard_go/venue"
)

// CheckResult is the typed validation outcome of a Request. Validation
// failures are local and deterministic: they are reported, never retried,
// and never reach the venue.
type CheckResult string

const (
	CheckPassed              CheckResult = "CHECK_ARG_TRANSACTION_PASSED"
	ErrSymbolNotAvailable    CheckResult = "ERR_SYMBOL_NOT_AVAILABLE"
	ErrInvalidLotSize        CheckResult = "ERR_INVALID_LOT_SIZE"
	ErrDeviationInsufficient CheckResult = "ERR_DEVIATION_INSUFFICIENT"
	ErrInvalidPrice          CheckResult = "ERR_INVALID_PRICE"
)

// Request describes one desired venue action. Build one with NewRequest,
// validate it once, then hand it to a Transaction; a new desired action
// always means a new Request.
type Request struct {
	Action     venue.TradeAction
	Symbol     string
	PositionID string
	OrderID    string
	Side       venue.Side
	OrderType  venue.OrderType
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Deviation  int // max slippage in points
	Comment    string

	check     CheckResult
	validated bool
}

// NewRequest creates an unvalidated request.
func NewRequest(action venue.TradeAction, symbol string) *Request {
	return &Request{Action: action, Symbol: symbol}
}

// Check returns the validation outcome; CheckPassed only after a successful
// Validate call.
func (r *Request) Check() CheckResult {
	if !r.validated {
		return ""
	}
	return r.check
}

// Validated reports whether Validate has run.
func (r *Request) Validated() bool {
	return r.validated
}

// Validate normalizes and checks the request against the instrument's trading
// rules and the current market. The request is frozen afterwards: the first
// outcome sticks, and repeated calls return it unchanged.
func (r *Request) Validate(client venue.Client) CheckResult {
	if r.validated {
		return r.check
	}
	r.check = r.validate(client)
	r.validated = true
	if r.check != CheckPassed {
		logs.Warnf("[Request] Validation failed for %s on %s: %s", r.Action, r.Symbol, r.check)
	}
	return r.check
}

func (r *Request) validate(client venue.Client) CheckResult {
	info, ok := client.SymbolInfo(r.Symbol)
	if !ok || !info.TradeAllowed {
		return ErrSymbolNotAvailable
	}

	if r.needsVolume() {
		vol, err := calc.RoundVolume(r.Volume, info)
		if err != nil {
			return ErrInvalidLotSize
		}
		r.Volume = vol
	}

	tick, err := client.Tick(r.Symbol)
	if err != nil {
		return ErrSymbolNotAvailable
	}

	if !r.pricesSane(tick, info) {
		return ErrInvalidPrice
	}

	// The allowed deviation must at least cover the current spread, or the
	// venue is guaranteed to requote.
	if r.Deviation > 0 {
		if utils.PointsToPrice(r.Deviation, info.Point) < tick.Ask-tick.Bid {
			return ErrDeviationInsufficient
		}
	}

	return CheckPassed
}

func (r *Request) needsVolume() bool {
	switch r.Action {
	case venue.ActionPartialClose, venue.ActionPlacePending:
		return true
	}
	return false
}

// pricesSane checks that every price carried by the request is non-zero where
// required and sits on the correct side of the current bid/ask for the action.
func (r *Request) pricesSane(tick venue.Tick, info venue.SymbolInfo) bool {
	switch r.Action {
	case venue.ActionModifyPosition:
		if r.StopLoss <= 0 && r.TakeProfit <= 0 {
			return false
		}
		if r.Side == venue.Buy {
			if r.StopLoss > 0 && r.StopLoss >= tick.Bid {
				return false
			}
			if r.TakeProfit > 0 && r.TakeProfit <= tick.Bid {
				return false
			}
		} else {
			if r.StopLoss > 0 && r.StopLoss <= tick.Ask {
				return false
			}
			if r.TakeProfit > 0 && r.TakeProfit >= tick.Ask {
				return false
			}
		}
		return true

	case venue.ActionPlacePending:
		if r.Price <= 0 {
			return false
		}
		switch r.OrderType {
		case venue.BuyLimit:
			return r.Price < tick.Ask
		case venue.BuyStop:
			return r.Price > tick.Ask
		case venue.SellLimit:
			return r.Price > tick.Bid
		case venue.SellStop:
			return r.Price < tick.Bid
		}
		return false

	case venue.ActionClosePosition, venue.ActionPartialClose:
		return r.PositionID != ""

	case venue.ActionCancelPending:
		return r.OrderID != ""
	}
	return false
}
