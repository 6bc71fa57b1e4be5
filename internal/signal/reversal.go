package signal

import "coinpilot/internal/indicator"

// Reversal is a mean-reversion strategy: it enters when both CCI and RSI read
// deeply oversold and exits when both read overbought.
type Reversal struct {
	CCIWindow  int
	Overbought float64 // RSI level
	Oversold   float64 // RSI level
}

// NewReversal creates a Reversal strategy with the standard 14-window CCI and
// 70/30 RSI levels when none are given.
func NewReversal(cciWindow int, overbought, oversold float64) *Reversal {
	if cciWindow <= 0 {
		cciWindow = 14
	}
	if overbought <= 0 {
		overbought = 70
	}
	if oversold <= 0 {
		oversold = 30
	}
	return &Reversal{CCIWindow: cciWindow, Overbought: overbought, Oversold: oversold}
}

func (r *Reversal) Name() string { return "reversal" }

func (r *Reversal) ShouldEnter(_ string, currentPrice float64, history []float64) bool {
	if currentPrice <= 0 || len(history) < r.CCIWindow {
		return false
	}
	return indicator.CCI(history, r.CCIWindow) < -100 && indicator.RSI(history) < r.Oversold
}

func (r *Reversal) ShouldExit(_ string, currentPrice float64, history []float64) bool {
	if currentPrice <= 0 || len(history) < r.CCIWindow {
		return false
	}
	return indicator.CCI(history, r.CCIWindow) > 100 && indicator.RSI(history) > r.Overbought
}
