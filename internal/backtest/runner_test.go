package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinpilot/internal/risk"
)

// thresholdStrategy buys below buyAt and sells above sellAt.
type thresholdStrategy struct {
	buyAt, sellAt float64
}

func (s *thresholdStrategy) Name() string { return "threshold" }
func (s *thresholdStrategy) ShouldEnter(_ string, price float64, _ []float64) bool {
	return price < s.buyAt
}
func (s *thresholdStrategy) ShouldExit(_ string, price float64, _ []float64) bool {
	return price > s.sellAt
}

func backtestLimits() risk.Limits {
	return risk.Limits{
		StopLossThreshold: 0.05,
		TrailPercent:      0.1,
		RiskPerTrade:      0.01,
		MaxDrawdown:       0.2,
		MaxPositionSize:   0.5,
		MaxLeverage:       5,
		MarginRatio:       0.9,
	}
}

func TestRunWinningRoundTrip(t *testing.T) {
	r, err := NewRunner(&thresholdStrategy{buyAt: 100, sellAt: 110}, backtestLimits(), 0.2, 50)
	require.NoError(t, err)

	// Enter at 95, ride to 111, exit on the sell signal.
	prices := []float64{100, 95, 96, 111, 115}
	res, err := r.Run("BTC/USDT", prices, 10000)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Trades)
	assert.Equal(t, 1, res.Wins)
	assert.Equal(t, 1.0, res.WinRate)
	assert.Greater(t, res.FinalBalance, 10000.0)
	assert.False(t, res.Halted)
	assert.Len(t, res.Equity, len(prices))
}

func TestRunStopLossCountsAsLoss(t *testing.T) {
	r, err := NewRunner(&thresholdStrategy{buyAt: 100, sellAt: 200}, backtestLimits(), 0.2, 50)
	require.NoError(t, err)

	// Enter at 95; 90 is below the 5% stop at 90.25.
	prices := []float64{100, 95, 90, 105, 106}
	res, err := r.Run("BTC/USDT", prices, 10000)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Trades)
	assert.Equal(t, 0, res.Wins)
	assert.Less(t, res.FinalBalance, 10000.0)
	assert.Greater(t, res.MaxDrawdown, 0.0)
}

func TestRunNoSignalsNoTrades(t *testing.T) {
	r, err := NewRunner(&thresholdStrategy{buyAt: 0, sellAt: 1e9}, backtestLimits(), 0.2, 50)
	require.NoError(t, err)

	res, err := r.Run("BTC/USDT", []float64{100, 101, 102, 103}, 10000)
	require.NoError(t, err)
	assert.Zero(t, res.Trades)
	assert.Equal(t, 10000.0, res.FinalBalance)
	assert.Zero(t, res.MaxDrawdown)
}

func TestRunRejectsShortSeries(t *testing.T) {
	r, err := NewRunner(&thresholdStrategy{}, backtestLimits(), 0.2, 50)
	require.NoError(t, err)
	_, err = r.Run("BTC/USDT", []float64{100}, 10000)
	assert.Error(t, err)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(nil, backtestLimits(), 0.2, 50)
	assert.Error(t, err, "strategy is required")

	_, err = NewRunner(&thresholdStrategy{}, risk.Limits{}, 0.2, 50)
	assert.Error(t, err, "limits must validate")

	_, err = NewRunner(&thresholdStrategy{}, backtestLimits(), 1.5, 50)
	assert.Error(t, err, "fraction must be a fraction")
}

func TestGenerateSeries(t *testing.T) {
	a := GenerateSeries(100, 100, 0.02, 7)
	b := GenerateSeries(100, 100, 0.02, 7)
	assert.Equal(t, a, b, "same seed must reproduce the series")
	require.Len(t, a, 100)
	for _, p := range a {
		assert.Greater(t, p, 0.0)
	}
	c := GenerateSeries(100, 100, 0.02, 8)
	assert.NotEqual(t, a, c, "different seeds should diverge")
}
