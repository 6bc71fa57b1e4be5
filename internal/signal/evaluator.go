package signal

import (
	"coinpilot/internal/indicator"
)

// Strategy decides entries and exits from a price history. Implementations
// must never return an error: anything that cannot be evaluated reads as
// "no signal".
type Strategy interface {
	ShouldEnter(symbol string, currentPrice float64, history []float64) bool
	ShouldExit(symbol string, currentPrice float64, history []float64) bool
	Name() string
}

// Config tunes the trend-following evaluator. Zero fields fall back to the
// defaults applied by NewEvaluator.
type Config struct {
	BuyWindow        int     // moving-average window gating entries
	SellWindow       int     // moving-average window gating exits
	TrendWindow      int     // longer trend reference window
	DeviationFactor  float64 // volatility filter: price must exceed mean + factor*stddev
	OversoldRSI      float64 // RSI at or below this reads as oversold
	ResistanceSample int     // number of recent prices for the resistance check
	ResistanceFloor  float64 // resistance of the sample must exceed this
}

// Evaluator is the primary trend-following strategy: a moving-average gate
// combined with a trend reference, a volatility filter, an RSI oversold
// check, and a resistance-level check. All sub-conditions are ANDed.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator, applying defaults for unset options.
func NewEvaluator(cfg Config) *Evaluator {
	if cfg.BuyWindow <= 0 {
		cfg.BuyWindow = 50
	}
	if cfg.SellWindow <= 0 {
		cfg.SellWindow = 30
	}
	if cfg.TrendWindow <= 0 {
		cfg.TrendWindow = 100
	}
	if cfg.DeviationFactor <= 0 {
		cfg.DeviationFactor = 1.5
	}
	if cfg.OversoldRSI <= 0 {
		cfg.OversoldRSI = 30
	}
	if cfg.ResistanceSample <= 0 {
		cfg.ResistanceSample = 5
	}
	return &Evaluator{cfg: cfg}
}

func (e *Evaluator) Name() string { return "trend" }

// ShouldEnter reports whether a buy signal is present. A history shorter than
// the configured windows, or a non-positive price, yields no signal rather
// than an error.
func (e *Evaluator) ShouldEnter(_ string, currentPrice float64, history []float64) bool {
	if currentPrice <= 0 || len(history) < e.cfg.BuyWindow || len(history) < e.cfg.TrendWindow {
		return false
	}
	buyMA := indicator.EMA(history, e.cfg.BuyWindow)
	if currentPrice <= buyMA {
		return false
	}
	trendMA := indicator.SMA(history, e.cfg.TrendWindow)
	if currentPrice <= trendMA {
		return false
	}
	std := indicator.StdDev(history, e.cfg.BuyWindow)
	if currentPrice <= buyMA+e.cfg.DeviationFactor*std {
		return false
	}
	if indicator.RSI(history) > e.cfg.OversoldRSI {
		return false
	}
	return e.resistanceOK(history)
}

// ShouldExit reports whether a sell signal is present. Symmetric with
// ShouldEnter: the price must sit below the sell moving average and RSI must
// NOT read oversold; the remaining filters are unchanged.
func (e *Evaluator) ShouldExit(_ string, currentPrice float64, history []float64) bool {
	if currentPrice <= 0 || len(history) < e.cfg.SellWindow ||
		len(history) < e.cfg.BuyWindow || len(history) < e.cfg.TrendWindow {
		return false
	}
	sellMA := indicator.EMA(history, e.cfg.SellWindow)
	if currentPrice >= sellMA {
		return false
	}
	trendMA := indicator.SMA(history, e.cfg.TrendWindow)
	if currentPrice <= trendMA {
		return false
	}
	// Volatility filter is shared with the entry side: it always reads the
	// buy-window statistics.
	buyMA := indicator.EMA(history, e.cfg.BuyWindow)
	std := indicator.StdDev(history, e.cfg.BuyWindow)
	if currentPrice <= buyMA+e.cfg.DeviationFactor*std {
		return false
	}
	if indicator.RSI(history) <= e.cfg.OversoldRSI {
		return false
	}
	return e.resistanceOK(history)
}

// resistanceOK checks that the resistance level of the most recent sample
// clears the configured floor.
func (e *Evaluator) resistanceOK(history []float64) bool {
	sample := history
	if len(sample) > e.cfg.ResistanceSample {
		sample = sample[len(sample)-e.cfg.ResistanceSample:]
	}
	return indicator.ResistanceLevel(sample) > e.cfg.ResistanceFloor
}
