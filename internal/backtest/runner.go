// Package backtest replays a price series through the strategy and risk
// pipeline and reports how the account would have fared.
package backtest

import (
	"errors"
	"fmt"
	"math/rand"

	"coinpilot/internal/risk"
	"coinpilot/internal/signal"
)

// Result summarizes one backtest run.
type Result struct {
	Bars         int
	Trades       int // round trips
	Wins         int
	WinRate      float64
	FinalBalance float64
	MaxDrawdown  float64 // worst peak-to-trough over the equity curve
	Halted       bool    // drawdown gate fired during the run
	Equity       []float64
}

// Runner replays bars through a strategy with a fresh risk controller per run.
type Runner struct {
	strategy signal.Strategy
	limits   risk.Limits
	fraction float64
	window   int
}

// NewRunner creates a Runner. fraction caps each position at that share of
// the balance; window bounds the history handed to the strategy.
func NewRunner(strategy signal.Strategy, limits risk.Limits, fraction float64, window int) (*Runner, error) {
	if strategy == nil {
		return nil, errors.New("strategy is required")
	}
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("risk limits: %w", err)
	}
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("fraction must be in (0,1], got %v", fraction)
	}
	if window <= 0 {
		window = 200
	}
	return &Runner{strategy: strategy, limits: limits, fraction: fraction, window: window}, nil
}

// Run replays the series bar by bar. Entries and exits settle against the
// balance immediately; once the drawdown gate fires, no further positions
// are opened.
func (r *Runner) Run(symbol string, prices []float64, initialBalance float64) (Result, error) {
	if len(prices) < 2 {
		return Result{}, errors.New("price series too short")
	}
	ctrl, err := risk.NewController(r.limits, initialBalance)
	if err != nil {
		return Result{}, err
	}

	const venue = "backtest"
	res := Result{Bars: len(prices), Equity: make([]float64, 0, len(prices))}
	balance := initialBalance

	for i, price := range prices {
		if price <= 0 {
			continue
		}
		start := i + 1 - r.window
		if start < 0 {
			start = 0
		}
		history := prices[start : i+1]

		if pos, open := ctrl.Position(symbol, venue); open {
			closed := false
			if _, hit := ctrl.Observe(symbol, venue, price); hit {
				closed = true
			} else if r.strategy.ShouldExit(symbol, price, history) {
				ctrl.ClosePosition(symbol, venue, risk.CloseSellSignal)
				closed = true
			}
			if closed {
				pnl := pos.Size * (price/pos.EntryPrice - 1)
				balance += pnl
				ctrl.UpdateBalance(balance)
				res.Trades++
				if pnl > 0 {
					res.Wins++
				}
			}
		} else if !ctrl.Halted() && !ctrl.MarginCall() && r.strategy.ShouldEnter(symbol, price, history) {
			stopPrice := price * (1 - r.limits.TrailPercent)
			size, err := ctrl.TradeSize(stopPrice)
			if err == nil {
				if limit := balance * r.fraction; size > limit {
					size = limit
				}
				if size > 0 {
					_ = ctrl.OpenPosition(symbol, venue, price, size)
				}
			}
		}

		if ctrl.Halted() {
			res.Halted = true
		}
		res.Equity = append(res.Equity, balance)
	}

	res.FinalBalance = balance
	res.MaxDrawdown = maxDrawdown(res.Equity)
	if res.Trades > 0 {
		res.WinRate = float64(res.Wins) / float64(res.Trades)
	}
	return res, nil
}

func maxDrawdown(equity []float64) float64 {
	peak, worst := 0.0, 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// GenerateSeries produces a seeded random-walk price series for offline runs.
func GenerateSeries(n int, start, volatility float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	prices := make([]float64, n)
	price := start
	for i := range prices {
		price *= 1 + volatility*(2*rng.Float64()-1)
		if price < 0.01 {
			price = 0.01
		}
		prices[i] = price
	}
	return prices
}
