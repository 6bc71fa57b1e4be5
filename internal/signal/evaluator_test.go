package signal

import "testing"

// declining returns n strictly decreasing prices ending at end.
func declining(n int, end float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = end + float64(n-1-i)
	}
	return out
}

func TestShouldEnter_OversoldBreakout(t *testing.T) {
	e := NewEvaluator(Config{
		BuyWindow:        5,
		SellWindow:       3,
		TrendWindow:      10,
		DeviationFactor:  1,
		OversoldRSI:      30,
		ResistanceSample: 3,
	})
	// A long decline keeps RSI at 0 (oversold); a current price far above
	// every average satisfies the trend and volatility filters.
	history := declining(20, 110)
	if !e.ShouldEnter("BTC/USD", 500, history) {
		t.Error("expected buy signal for oversold series with breakout price")
	}
}

func TestShouldEnter_NotOversold(t *testing.T) {
	e := NewEvaluator(Config{BuyWindow: 5, SellWindow: 3, TrendWindow: 10, DeviationFactor: 1, OversoldRSI: 30, ResistanceSample: 3})
	// Strictly rising history has RSI 100: never oversold, so no entry even
	// though every other filter passes.
	history := make([]float64, 20)
	for i := range history {
		history[i] = 100 + float64(i)
	}
	if e.ShouldEnter("BTC/USD", 500, history) {
		t.Error("expected no buy signal when RSI is not oversold")
	}
}

func TestShouldEnter_BelowMovingAverage(t *testing.T) {
	e := NewEvaluator(Config{BuyWindow: 5, SellWindow: 3, TrendWindow: 10, DeviationFactor: 1, OversoldRSI: 30, ResistanceSample: 3})
	history := declining(20, 110)
	if e.ShouldEnter("BTC/USD", 50, history) {
		t.Error("expected no buy signal when price sits below the moving average")
	}
}

func TestShouldEnter_ResistanceFloor(t *testing.T) {
	e := NewEvaluator(Config{
		BuyWindow: 5, SellWindow: 3, TrendWindow: 10,
		DeviationFactor: 1, OversoldRSI: 30,
		ResistanceSample: 3, ResistanceFloor: 1e6,
	})
	history := declining(20, 110)
	if e.ShouldEnter("BTC/USD", 500, history) {
		t.Error("expected no buy signal when the resistance sample cannot clear the floor")
	}
}

func TestShouldExit_DipBelowSellAverage(t *testing.T) {
	e := NewEvaluator(Config{
		BuyWindow:        5,
		SellWindow:       3,
		TrendWindow:      10,
		DeviationFactor:  0.2,
		OversoldRSI:      30,
		ResistanceSample: 3,
	})
	history := []float64{100, 102, 104, 106, 108, 110, 120, 130, 140, 150}
	// 136 sits below the 3-window average (140) but above the trend mean and
	// the buy-window volatility band; RSI of a rising series is 100.
	if !e.ShouldExit("BTC/USD", 136, history) {
		t.Error("expected sell signal for dip below the sell moving average")
	}
	if e.ShouldExit("BTC/USD", 145, history) {
		t.Error("expected no sell signal when price is above the sell moving average")
	}
}

func TestShouldExit_OversoldBlocksSell(t *testing.T) {
	e := NewEvaluator(Config{BuyWindow: 5, SellWindow: 3, TrendWindow: 10, DeviationFactor: 0.2, OversoldRSI: 30, ResistanceSample: 3})
	// A declining series reads oversold, which suppresses the sell side.
	if e.ShouldExit("BTC/USD", 108, declining(20, 110)) {
		t.Error("expected no sell signal while RSI reads oversold")
	}
}

func TestEvaluator_DegenerateInputIsNoSignal(t *testing.T) {
	e := NewEvaluator(Config{})
	cases := []struct {
		price   float64
		history []float64
	}{
		{0, declining(200, 100)},
		{-5, declining(200, 100)},
		{100, nil},
		{100, []float64{1, 2, 3}},
	}
	for _, c := range cases {
		if e.ShouldEnter("X", c.price, c.history) {
			t.Errorf("ShouldEnter(price=%v, len=%d) = true, want no signal", c.price, len(c.history))
		}
		if e.ShouldExit("X", c.price, c.history) {
			t.Errorf("ShouldExit(price=%v, len=%d) = true, want no signal", c.price, len(c.history))
		}
	}
}
