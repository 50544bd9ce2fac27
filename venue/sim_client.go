package venue

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"profit_guard_go/logs"
)

//
// Simulated venue for running and testing the engine without a live broker.
//

// Ensure SimClient implements Client.
var _ Client = (*SimClient)(nil)

// SimClient is an in-memory implementation of the Client interface. The book
// it holds is mutated only through Send, mirroring how a real venue behaves.
type SimClient struct {
	mu         sync.RWMutex
	symbols    map[string]SymbolInfo
	ticks      map[string]Tick
	positions  map[string]*Position
	orders     map[string]*Order
	nextID     int64
	sent       []TradeRequest // every request that reached Send, for inspection
	rejectFill map[FillingMode]bool
	failSends  int  // next N sends answer REJECTED
	requoteAll bool // answer REQUOTE until cleared
}

// NewSimClient creates an empty simulated venue.
func NewSimClient() *SimClient {
	return &SimClient{
		symbols:    make(map[string]SymbolInfo),
		ticks:      make(map[string]Tick),
		positions:  make(map[string]*Position),
		orders:     make(map[string]*Order),
		nextID:     1,
		rejectFill: make(map[FillingMode]bool),
	}
}

// SetSymbolInfo registers or replaces the trading rules for an instrument.
func (c *SimClient) SetSymbolInfo(info SymbolInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbols[info.Symbol] = info
}

// SetTick publishes a new top-of-book quote.
func (c *SimClient) SetTick(symbol string, bid, ask float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks[symbol] = Tick{Symbol: symbol, Bid: bid, Ask: ask, Time: time.Now()}
}

// AddPosition seeds an open position and returns its identifier.
func (c *SimClient) AddPosition(p Position) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.ID == "" {
		p.ID = strconv.FormatInt(c.nextID, 10)
		c.nextID++
	}
	if p.OpenTime.IsZero() {
		p.OpenTime = time.Now()
	}
	cp := p
	c.positions[p.ID] = &cp
	return p.ID
}

// AddOrder seeds a pending order and returns its identifier.
func (c *SimClient) AddOrder(o Order) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.ID == "" {
		o.ID = strconv.FormatInt(c.nextID, 10)
		c.nextID++
	}
	if o.PlacedTime.IsZero() {
		o.PlacedTime = time.Now()
	}
	co := o
	c.orders[o.ID] = &co
	return o.ID
}

// RemovePosition drops a position from the book, simulating an external close.
func (c *SimClient) RemovePosition(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.positions, id)
}

// RejectFillingMode makes the venue answer INVALID_FILL for the given mode.
func (c *SimClient) RejectFillingMode(mode FillingMode, reject bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejectFill[mode] = reject
}

// FailNextSends makes the venue answer REJECTED for the next n submissions.
func (c *SimClient) FailNextSends(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSends = n
}

// SetRequoteAll makes every submission answer REQUOTE until cleared.
func (c *SimClient) SetRequoteAll(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requoteAll = on
}

// SentRequests returns a copy of every request that reached Send.
func (c *SimClient) SentRequests() []TradeRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]TradeRequest, len(c.sent))
	copy(out, c.sent)
	return out
}

// SendCount returns how many submissions reached the venue.
func (c *SimClient) SendCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sent)
}

func (c *SimClient) Tick(symbol string) (Tick, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.ticks[symbol]
	if !ok {
		return Tick{}, fmt.Errorf("no quote available for %s", symbol)
	}
	return t, nil
}

func (c *SimClient) SymbolInfo(symbol string) (SymbolInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.symbols[symbol]
	return info, ok
}

func (c *SimClient) Positions(symbol string) ([]Position, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Position, 0, len(c.positions))
	for _, p := range c.positions {
		if p.Symbol == symbol {
			out = append(out, *p)
		}
	}
	// Deterministic enumeration order for the scheduler.
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenTime.Equal(out[j].OpenTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenTime.Before(out[j].OpenTime)
	})
	return out, nil
}

func (c *SimClient) Orders(symbol string) ([]Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Order, 0, len(c.orders))
	for _, o := range c.orders {
		if o.Symbol == symbol {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlacedTime.Equal(out[j].PlacedTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].PlacedTime.Before(out[j].PlacedTime)
	})
	return out, nil
}

// Send applies one trade request against the simulated book.
func (c *SimClient) Send(ctx context.Context, req *TradeRequest) (*TradeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, *req)

	if c.requoteAll {
		return &TradeResult{RetCode: RetRequote, Comment: "price moved"}, nil
	}
	if c.failSends > 0 {
		c.failSends--
		return &TradeResult{RetCode: RetRejected, Comment: "rejected by venue"}, nil
	}

	info, ok := c.symbols[req.Symbol]
	if !ok || !info.TradeAllowed {
		return &TradeResult{RetCode: RetRejected, Comment: "symbol not tradable"}, nil
	}
	if c.rejectFill[req.Filling] || (req.Filling != "" && !info.SupportsFilling(req.Filling)) {
		return &TradeResult{RetCode: RetInvalidFill, Comment: fmt.Sprintf("filling mode %s not supported", req.Filling)}, nil
	}

	tick := c.ticks[req.Symbol]

	switch req.Action {
	case ActionModifyPosition:
		p, ok := c.positions[req.PositionID]
		if !ok {
			return &TradeResult{RetCode: RetNotFound, Comment: "position not found"}, nil
		}
		if !c.stopsValid(p.Side, req.StopLoss, req.TakeProfit, tick) {
			return &TradeResult{RetCode: RetInvalidStops, Comment: "stops on wrong side of market"}, nil
		}
		if req.StopLoss > 0 {
			p.StopLoss = req.StopLoss
		}
		if req.TakeProfit > 0 {
			p.TakeProfit = req.TakeProfit
		}
		logs.Debugf("[Sim] Position %s modified: SL=%.5f TP=%.5f", p.ID, p.StopLoss, p.TakeProfit)
		return &TradeResult{RetCode: RetDone}, nil

	case ActionClosePosition:
		p, ok := c.positions[req.PositionID]
		if !ok {
			return &TradeResult{RetCode: RetNotFound, Comment: "position not found"}, nil
		}
		delete(c.positions, req.PositionID)
		price := c.closePrice(p.Side, tick)
		logs.Debugf("[Sim] Position %s closed at %.5f", p.ID, price)
		return &TradeResult{RetCode: RetDone, DealPrice: price}, nil

	case ActionPartialClose:
		p, ok := c.positions[req.PositionID]
		if !ok {
			return &TradeResult{RetCode: RetNotFound, Comment: "position not found"}, nil
		}
		if req.Volume <= 0 || req.Volume >= p.Volume {
			return &TradeResult{RetCode: RetRejected, Comment: "invalid partial volume"}, nil
		}
		p.Volume -= req.Volume
		price := c.closePrice(p.Side, tick)
		logs.Debugf("[Sim] Position %s reduced by %.2f to %.2f", p.ID, req.Volume, p.Volume)
		return &TradeResult{RetCode: RetDone, DealPrice: price}, nil

	case ActionPlacePending:
		id := strconv.FormatInt(c.nextID, 10)
		c.nextID++
		c.orders[id] = &Order{
			ID:         id,
			Symbol:     req.Symbol,
			Type:       req.OrderType,
			Volume:     req.Volume,
			Price:      req.Price,
			StopLoss:   req.StopLoss,
			TakeProfit: req.TakeProfit,
			PlacedTime: time.Now(),
		}
		logs.Debugf("[Sim] Pending order %s placed: %s %.2f @ %.5f", id, req.OrderType, req.Volume, req.Price)
		return &TradeResult{RetCode: RetDone}, nil

	case ActionCancelPending:
		if _, ok := c.orders[req.OrderID]; !ok {
			return &TradeResult{RetCode: RetNotFound, Comment: "order not found"}, nil
		}
		delete(c.orders, req.OrderID)
		logs.Debugf("[Sim] Pending order %s cancelled", req.OrderID)
		return &TradeResult{RetCode: RetDone}, nil
	}

	return &TradeResult{RetCode: RetRejected, Comment: "unknown action"}, nil
}

// stopsValid checks that a requested stop-loss/take-profit pair sits on the
// correct side of the current market for the position's direction.
func (c *SimClient) stopsValid(side Side, sl, tp float64, tick Tick) bool {
	if side == Buy {
		if sl > 0 && tick.Bid > 0 && sl >= tick.Bid {
			return false
		}
		if tp > 0 && tick.Bid > 0 && tp <= tick.Bid {
			return false
		}
		return true
	}
	if sl > 0 && tick.Ask > 0 && sl <= tick.Ask {
		return false
	}
	if tp > 0 && tick.Ask > 0 && tp >= tick.Ask {
		return false
	}
	return true
}

func (c *SimClient) closePrice(side Side, tick Tick) float64 {
	if side == Buy {
		return tick.Bid
	}
	return tick.Ask
}
