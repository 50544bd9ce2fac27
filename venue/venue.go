package venue

import (
	"context"
	"time"
)

// Side defines the direction of a position (BUY/long or SELL/short).
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderType defines the pending order type.
type OrderType string

const (
	BuyLimit  OrderType = "BUY_LIMIT"
	SellLimit OrderType = "SELL_LIMIT"
	BuyStop   OrderType = "BUY_STOP"
	SellStop  OrderType = "SELL_STOP"
)

// FillingMode defines the execution matching policy requested with an order.
type FillingMode string

const (
	FillingFOK    FillingMode = "FOK"    // fill-or-kill
	FillingIOC    FillingMode = "IOC"    // immediate-or-cancel
	FillingReturn FillingMode = "RETURN" // book the remainder
)

// TradeAction defines what a trade request asks the venue to do.
type TradeAction string

const (
	ActionModifyPosition TradeAction = "MODIFY_POSITION" // change stop-loss / take-profit
	ActionClosePosition  TradeAction = "CLOSE_POSITION"
	ActionPartialClose   TradeAction = "PARTIAL_CLOSE"
	ActionPlacePending   TradeAction = "PLACE_PENDING"
	ActionCancelPending  TradeAction = "CANCEL_PENDING"
)

// RetCode is the venue's raw result code for one submission.
type RetCode string

const (
	RetDone         RetCode = "DONE"
	RetInvalidFill  RetCode = "INVALID_FILL" // requested filling mode not supported
	RetRejected     RetCode = "REJECTED"
	RetRequote      RetCode = "REQUOTE" // price moved beyond the allowed deviation
	RetInvalidStops RetCode = "INVALID_STOPS"
	RetNotFound     RetCode = "NOT_FOUND" // unknown position/order identifier
)

// Tick is a single top-of-book quote.
type Tick struct {
	Symbol string
	Bid    float64
	Ask    float64
	Time   time.Time
}

// SymbolInfo holds the trading rules for one instrument.
type SymbolInfo struct {
	Symbol       string
	Digits       int
	Point        float64
	TickSize     float64
	VolumeMin    float64
	VolumeMax    float64
	VolumeStep   float64
	FillingModes []FillingMode // supported modes, in venue preference order
	TradeAllowed bool
}

// SupportsFilling reports whether the instrument accepts the given mode.
func (s SymbolInfo) SupportsFilling(mode FillingMode) bool {
	for _, m := range s.FillingModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Position is an open trade owned by the venue. The engine never creates or
// destroys positions; it only proposes stop-loss/take-profit changes or closes.
type Position struct {
	ID         string
	Symbol     string
	Side       Side
	Volume     float64
	OpenPrice  float64
	StopLoss   float64 // 0 means not set
	TakeProfit float64 // 0 means not set
	OpenTime   time.Time
}

// Order is a pending order resting at the venue.
type Order struct {
	ID         string
	Symbol     string
	Type       OrderType
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	PlacedTime time.Time
}

// TradeRequest describes one desired venue action.
type TradeRequest struct {
	ClientID   string // client-side correlation id
	Action     TradeAction
	Symbol     string
	PositionID string
	OrderID    string // for cancels
	Side       Side
	OrderType  OrderType
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Deviation  int // max slippage in points
	Filling    FillingMode
	Comment    string
}

// TradeResult is the venue's answer to one submission attempt.
type TradeResult struct {
	RetCode   RetCode
	DealPrice float64
	Comment   string
}

// Client defines the interface the engine needs from an execution venue.
// Send is the sole I/O boundary and the only source of externally observable
// side effects in the whole engine.
type Client interface {
	// Tick returns the latest quote for the instrument.
	Tick(symbol string) (Tick, error)

	// SymbolInfo returns the trading rules for the instrument from cache.
	SymbolInfo(symbol string) (SymbolInfo, bool)

	// Positions lists the currently open positions for the instrument.
	Positions(symbol string) ([]Position, error)

	// Orders lists the currently resting pending orders for the instrument.
	Orders(symbol string) ([]Order, error)

	// Send submits one trade request and returns the venue's result.
	Send(ctx context.Context, req *TradeRequest) (*TradeResult, error)
}
