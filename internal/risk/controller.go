package risk

import (
	"errors"
	"fmt"
	"sync"

	"coinpilot/internal/indicator"
)

// ErrDegenerateStop is returned by TradeSize when the sizing denominator is
// not positive. The trade is skipped; the run continues.
var ErrDegenerateStop = errors.New("account balance does not exceed stop-loss price")

// CloseReason says why an open position was closed.
type CloseReason string

const (
	CloseStopLoss     CloseReason = "stop_loss"
	CloseTrailingStop CloseReason = "trailing_stop"
	CloseProfitTarget CloseReason = "profit_target"
	CloseSellSignal   CloseReason = "sell_signal"
)

// Position is a read-only snapshot of one open position.
type Position struct {
	Symbol       string
	Venue        string
	EntryPrice   float64
	HighestPrice float64
	Size         float64
}

// Exit describes a close decision produced by a price observation.
type Exit struct {
	Reason    CloseReason
	StopPrice float64
}

// Controller owns the account state and all open positions, and enforces the
// capital-preservation rules: stop-loss, trailing stop, position sizing,
// margin limits, and the drawdown halt gate. It is safe for concurrent use,
// though the decision loop drives it from a single goroutine.
type Controller struct {
	mu     sync.Mutex
	limits Limits

	balance        float64
	initialBalance float64
	highWaterMark  float64
	marginUsed     float64

	positions map[string]*position
}

type position struct {
	entryPrice   float64
	highestPrice float64
	size         float64
	margin       float64
}

func key(symbol, venue string) string { return symbol + "@" + venue }

// NewController creates a Controller with validated limits and an initial
// account balance.
func NewController(limits Limits, initialBalance float64) (*Controller, error) {
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("risk limits: %w", err)
	}
	if initialBalance <= 0 {
		return nil, fmt.Errorf("initial balance must be positive, got %v", initialBalance)
	}
	return &Controller{
		limits:         limits,
		balance:        initialBalance,
		initialBalance: initialBalance,
		highWaterMark:  initialBalance,
		positions:      make(map[string]*position),
	}, nil
}

// Limits returns the immutable limit configuration.
func (c *Controller) Limits() Limits { return c.limits }

// TradeSize computes the position size for a trade with the given stop-loss
// price: the balance fraction risked per trade divided by the distance to the
// stop, capped by the max-drawdown and max-position-size fractions of the
// balance. A stop price at or above the balance is a degenerate input and
// returns ErrDegenerateStop.
func (c *Controller) TradeSize(stopLossPrice float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	denom := c.balance - stopLossPrice
	if denom <= 0 {
		return 0, ErrDegenerateStop
	}
	size := c.limits.RiskPerTrade * c.balance / denom
	if limit := c.limits.MaxDrawdown * c.balance; size > limit {
		size = limit
	}
	if limit := c.limits.MaxPositionSize * c.balance; size > limit {
		size = limit
	}
	return size, nil
}

// MarginRequired returns the margin a position of the given size consumes.
func (c *Controller) MarginRequired(size float64) float64 {
	return size / c.limits.MaxLeverage
}

// MarginCall reports whether used margin relative to the balance has reached
// the configured ratio. While true, new position increases are rejected.
func (c *Controller) MarginCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marginCallLocked()
}

func (c *Controller) marginCallLocked() bool {
	if c.balance <= 0 {
		return true
	}
	return c.marginUsed/c.balance >= c.limits.MarginRatio
}

// OpenPosition transitions a flat symbol/venue pair to Open after an accepted
// buy order. The trailing-stop high-water price starts at the entry price.
func (c *Controller) OpenPosition(symbol, venue string, entryPrice, size float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haltedLocked() {
		return errors.New("drawdown halt active")
	}
	if c.marginCallLocked() {
		return errors.New("margin call active")
	}
	k := key(symbol, venue)
	if _, open := c.positions[k]; open {
		return fmt.Errorf("position already open for %s", k)
	}
	margin := size / c.limits.MaxLeverage
	c.positions[k] = &position{
		entryPrice:   entryPrice,
		highestPrice: entryPrice,
		size:         size,
		margin:       margin,
	}
	c.marginUsed += margin
	return nil
}

// Observe feeds a price observation to an open position. The high-water price
// is raised first; then the stop-loss, trailing-stop, and profit-target exits
// are evaluated in that order, and the first breach closes the position.
// The returned stop price is the current trailing-stop level.
func (c *Controller) Observe(symbol, venue string, price float64) (Exit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(symbol, venue)
	p, open := c.positions[k]
	if !open {
		return Exit{}, false
	}
	if price > p.highestPrice {
		p.highestPrice = price
	}
	stopPrice := p.highestPrice * (1 - c.limits.TrailPercent)

	switch {
	case price <= p.entryPrice*(1-c.limits.StopLossThreshold):
		c.closeLocked(k, p)
		return Exit{Reason: CloseStopLoss, StopPrice: stopPrice}, true
	case price <= stopPrice:
		c.closeLocked(k, p)
		return Exit{Reason: CloseTrailingStop, StopPrice: stopPrice}, true
	case c.limits.ProfitTarget > 0 && price >= p.entryPrice*(1+c.limits.ProfitTarget):
		c.closeLocked(k, p)
		return Exit{Reason: CloseProfitTarget, StopPrice: stopPrice}, true
	}
	return Exit{StopPrice: stopPrice}, false
}

// ClosePosition transitions Open to Closed, e.g. after an accepted sell order.
func (c *Controller) ClosePosition(symbol, venue string, reason CloseReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(symbol, venue)
	p, open := c.positions[k]
	if !open {
		return false
	}
	c.closeLocked(k, p)
	return true
}

func (c *Controller) closeLocked(k string, p *position) {
	c.marginUsed -= p.margin
	if c.marginUsed < 0 {
		c.marginUsed = 0
	}
	delete(c.positions, k)
}

// Position returns a snapshot of the open position for the pair, if any.
func (c *Controller) Position(symbol, venue string) (Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, open := c.positions[key(symbol, venue)]
	if !open {
		return Position{}, false
	}
	return Position{
		Symbol:       symbol,
		Venue:        venue,
		EntryPrice:   p.entryPrice,
		HighestPrice: p.highestPrice,
		Size:         p.size,
	}, true
}

// OpenPositions returns the number of currently open positions.
func (c *Controller) OpenPositions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.positions)
}

// UpdateBalance records a settled balance and raises the high-water mark when
// the balance exceeds it. Drawdown is derived, never cached.
func (c *Controller) UpdateBalance(balance float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.balance = balance
	if balance > c.highWaterMark {
		c.highWaterMark = balance
	}
}

// Balance returns the current account balance.
func (c *Controller) Balance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance
}

// HighWaterMark returns the historical peak balance.
func (c *Controller) HighWaterMark() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highWaterMark
}

// Drawdown returns the fractional decline from the high-water mark,
// recomputed from the current state on every call.
func (c *Controller) Drawdown() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawdownLocked()
}

func (c *Controller) drawdownLocked() float64 {
	if c.highWaterMark <= 0 {
		return 0
	}
	return (c.highWaterMark - c.balance) / c.highWaterMark
}

// Halted reports whether the drawdown ceiling is breached. While halted, no
// new positions may be opened; existing positions may still be closed.
func (c *Controller) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.haltedLocked()
}

func (c *Controller) haltedLocked() bool {
	return c.drawdownLocked() > c.limits.MaxDrawdown
}

// DynamicStop widens a base stop-loss fraction with recent volatility: the
// ATR over the given bars, scaled by volFactor and normalized by the current
// price, is added to the stop distance. Returns the adjusted stop price.
func DynamicStop(baseStop, volFactor, currentPrice float64, high, low, close []float64, window int) float64 {
	if currentPrice <= 0 {
		return 0
	}
	atr := indicator.ATR(high, low, close, window)
	return currentPrice * (1 - (baseStop + volFactor*atr/currentPrice))
}
