package trade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"golang.org/x/time/rate"

	"profit_guard_go/logs"
	"profit_guard_go/venue"
)

// OrderResult is the normalized terminal outcome of one Transaction.
type OrderResult string

const (
	OrderPlacedSuccessfully OrderResult = "ORDER_PLACED_SUCCESSFULLY"
	ErrSendFailed           OrderResult = "ERR_SEND_FAILED"
)

// FillingResult is the outcome of the filling-mode negotiation.
type FillingResult string

const (
	FillingModeFound       FillingResult = "FILLING_MODE_FOUND"
	ErrFillingModeNotFound FillingResult = "ERR_FILLING_MODE_NO_FOUND"
	ErrInvalidRequest      FillingResult = "ERR_INVALID_REQUEST"
)

// fillingPriority is the fixed fallback order when the venue rejects the
// preferred mode.
var fillingPriority = []venue.FillingMode{venue.FillingFOK, venue.FillingIOC, venue.FillingReturn}

// Attempt records one venue round-trip made by a Transaction.
type Attempt struct {
	Filling venue.FillingMode
	RetCode venue.RetCode
	Comment string
	At      time.Time
}

// Transaction wraps exactly one Request through submission. Retries create
// new attempts; the Transaction accumulates them for diagnostics and reports
// a single terminal outcome.
type Transaction struct {
	ClientID string
	req      *Request

	fillingCheck FillingResult
	filling      venue.FillingMode // mode accepted on success
	attempts     []Attempt
	result       OrderResult
	comment      string
}

// Request returns the wrapped request.
func (t *Transaction) Request() *Request { return t.req }

// Result returns the normalized terminal outcome.
func (t *Transaction) Result() OrderResult { return t.result }

// Succeeded reports whether the venue acknowledged the action.
func (t *Transaction) Succeeded() bool { return t.result == OrderPlacedSuccessfully }

// FillingCheck returns the filling-mode negotiation outcome.
func (t *Transaction) FillingCheck() FillingResult { return t.fillingCheck }

// Filling returns the filling mode the venue accepted, empty on failure.
func (t *Transaction) Filling() venue.FillingMode { return t.filling }

// Attempts returns a copy of the attempt history.
func (t *Transaction) Attempts() []Attempt {
	out := make([]Attempt, len(t.attempts))
	copy(out, t.attempts)
	return out
}

// Comment returns a human-readable summary of the terminal outcome.
func (t *Transaction) Comment() string { return t.comment }

// Executor submits Transactions against a venue. It owns the submission rate
// limiter and remembers the last filling mode each symbol accepted, so later
// transactions start from the mode most likely to succeed.
type Executor struct {
	client  venue.Client
	limiter *rate.Limiter

	retryMin time.Duration
	retryMax time.Duration

	mu        sync.Mutex
	preferred map[string]venue.FillingMode
}

// NewExecutor creates an executor with the default submission pacing.
func NewExecutor(client venue.Client) *Executor {
	return &Executor{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(10), 20),
		retryMin:  50 * time.Millisecond,
		retryMax:  500 * time.Millisecond,
		preferred: make(map[string]venue.FillingMode),
	}
}

// SetRetryDelays overrides the inter-attempt delay bounds. Tests set both to
// zero to avoid sleeping.
func (e *Executor) SetRetryDelays(min, max time.Duration) {
	e.retryMin = min
	e.retryMax = max
}

// Execute validates the request and, if it passes, submits it once per
// filling mode until the venue accepts or the mode list is exhausted. The
// attempt count is bounded by the number of distinct modes; there is no
// unbounded retry.
func (e *Executor) Execute(ctx context.Context, req *Request) *Transaction {
	tx := &Transaction{ClientID: uuid.NewString(), req: req}

	// Validation failures never reach the venue.
	if check := req.Validate(e.client); check != CheckPassed {
		tx.fillingCheck = ErrInvalidRequest
		tx.result = ErrSendFailed
		tx.comment = fmt.Sprintf("request rejected locally: %s", check)
		return tx
	}

	modes := e.fillingOrder(req.Symbol)
	if len(modes) == 0 {
		tx.fillingCheck = ErrFillingModeNotFound
		tx.result = ErrSendFailed
		tx.comment = "no supported filling mode for " + req.Symbol
		logs.Errorf("[Transaction %s] %s", tx.ClientID, tx.comment)
		return tx
	}
	tx.fillingCheck = FillingModeFound

	delay := &backoff.Backoff{Min: e.retryMin, Max: e.retryMax, Factor: 2, Jitter: true}

	for i, mode := range modes {
		if i > 0 {
			select {
			case <-ctx.Done():
				tx.result = ErrSendFailed
				tx.comment = ctx.Err().Error()
				return tx
			case <-time.After(delay.Duration()):
			}
		}
		if err := e.limiter.Wait(ctx); err != nil {
			tx.result = ErrSendFailed
			tx.comment = err.Error()
			return tx
		}

		res, err := e.client.Send(ctx, e.wireRequest(req, tx.ClientID, mode))
		if err != nil {
			tx.attempts = append(tx.attempts, Attempt{Filling: mode, Comment: err.Error(), At: time.Now()})
			logs.Errorf("[Transaction %s] Send with %s failed: %v", tx.ClientID, mode, err)
			continue
		}
		tx.attempts = append(tx.attempts, Attempt{Filling: mode, RetCode: res.RetCode, Comment: res.Comment, At: time.Now()})

		switch res.RetCode {
		case venue.RetDone:
			tx.result = OrderPlacedSuccessfully
			tx.filling = mode
			tx.comment = fmt.Sprintf("accepted with filling mode %s after %d attempt(s)", mode, len(tx.attempts))
			e.rememberFilling(req.Symbol, mode)
			logs.Infof("[Transaction %s] %s %s: %s", tx.ClientID, req.Action, req.Symbol, tx.comment)
			return tx
		case venue.RetInvalidFill:
			e.forgetFilling(req.Symbol, mode)
			logs.Warnf("[Transaction %s] Filling mode %s not accepted, falling back", tx.ClientID, mode)
		default:
			logs.Warnf("[Transaction %s] Venue answered %s (%s), retrying with next mode", tx.ClientID, res.RetCode, res.Comment)
		}
	}

	tx.result = ErrSendFailed
	tx.comment = fmt.Sprintf("all %d filling mode(s) exhausted", len(modes))
	logs.Errorf("[Transaction %s] %s %s: %s", tx.ClientID, req.Action, req.Symbol, tx.comment)
	return tx
}

// fillingOrder returns the modes to try: the cached preferred mode first,
// then the fixed priority order, restricted to what the instrument supports.
func (e *Executor) fillingOrder(symbol string) []venue.FillingMode {
	info, ok := e.client.SymbolInfo(symbol)
	if !ok {
		return nil
	}

	e.mu.Lock()
	preferred, hasPreferred := e.preferred[symbol]
	e.mu.Unlock()

	var modes []venue.FillingMode
	if hasPreferred && info.SupportsFilling(preferred) {
		modes = append(modes, preferred)
	}
	for _, m := range fillingPriority {
		if m == preferred && hasPreferred {
			continue
		}
		if info.SupportsFilling(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

func (e *Executor) rememberFilling(symbol string, mode venue.FillingMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preferred[symbol] = mode
}

func (e *Executor) forgetFilling(symbol string, mode venue.FillingMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.preferred[symbol] == mode {
		delete(e.preferred, symbol)
	}
}

func (e *Executor) wireRequest(req *Request, clientID string, mode venue.FillingMode) *venue.TradeRequest {
	return &venue.TradeRequest{
		ClientID:   clientID,
		Action:     req.Action,
		Symbol:     req.Symbol,
		PositionID: req.PositionID,
		OrderID:    req.OrderID,
		Side:       req.Side,
		OrderType:  req.OrderType,
		Volume:     req.Volume,
		Price:      req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Deviation:  req.Deviation,
		Filling:    mode,
		Comment:    req.Comment,
	}
}
