package signal

import "coinpilot/internal/indicator"

// Momentum is a dual moving-average crossover strategy: long while the short
// average sits above the long average, flat otherwise.
type Momentum struct {
	ShortWindow int
	LongWindow  int
}

// NewMomentum creates a Momentum strategy with the classic 40/100 windows
// when none are given.
func NewMomentum(short, long int) *Momentum {
	if short <= 0 {
		short = 40
	}
	if long <= 0 {
		long = 100
	}
	return &Momentum{ShortWindow: short, LongWindow: long}
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) ShouldEnter(_ string, currentPrice float64, history []float64) bool {
	if currentPrice <= 0 || len(history) < m.LongWindow {
		return false
	}
	return indicator.SMA(history, m.ShortWindow) > indicator.SMA(history, m.LongWindow)
}

func (m *Momentum) ShouldExit(_ string, currentPrice float64, history []float64) bool {
	if currentPrice <= 0 || len(history) < m.LongWindow {
		return false
	}
	return indicator.SMA(history, m.ShortWindow) < indicator.SMA(history, m.LongWindow)
}
