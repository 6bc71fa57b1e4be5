package indicator

import "math"

// Pure price-series indicators. Degenerate input (empty or shorter than the
// window) yields the documented sentinel value instead of an error, so callers
// never have to branch on failure for normal market conditions.

// SMA computes the simple moving average of the last window prices.
// Returns 0 when the series is shorter than the window or the window is
// not positive.
func SMA(prices []float64, window int) float64 {
	if window <= 0 || len(prices) < window {
		return 0
	}
	sum := 0.0
	for i := len(prices) - window; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(window)
}

// EMA returns the rolling-mean average over the window. It is intentionally
// the same computation as SMA, not exponential weighting; the trading rules
// were tuned against this behavior. See DESIGN.md before changing it.
func EMA(prices []float64, window int) float64 {
	return SMA(prices, window)
}

// RSI computes the Relative Strength Index over the whole series: average
// gain over average loss across all period-over-period deltas.
// Fewer than 2 prices returns 0 (insufficient data). A series with no
// downward moves returns 100. The result is always in [0, 100].
func RSI(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var gainSum, lossSum float64
	var gainN, lossN int
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		switch {
		case delta > 0:
			gainSum += delta
			gainN++
		case delta < 0:
			lossSum -= delta
			lossN++
		}
	}
	var avgGain, avgLoss float64
	if gainN > 0 {
		avgGain = gainSum / float64(gainN)
	}
	if lossN > 0 {
		avgLoss = lossSum / float64(lossN)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	if rsi < 0 {
		return 0
	}
	if rsi > 100 {
		return 100
	}
	return rsi
}

// ATR computes the Average True Range: the rolling mean over the last window
// true ranges, where the true range of a step is
// max(high-low, |high-prevClose|, |low-prevClose|).
// Returns 0 when fewer than window+1 aligned bars are available.
func ATR(high, low, close []float64, window int) float64 {
	n := len(high)
	if len(low) < n {
		n = len(low)
	}
	if len(close) < n {
		n = len(close)
	}
	if window <= 0 || n < window+1 {
		return 0
	}
	sum := 0.0
	for i := n - window; i < n; i++ {
		tr := high[i] - low[i]
		if hc := math.Abs(high[i] - close[i-1]); hc > tr {
			tr = hc
		}
		if lc := math.Abs(low[i] - close[i-1]); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(window)
}

// BollingerBands returns the upper and lower band: SMA of the last window
// prices plus/minus numStdDev population standard deviations.
// Returns (0, 0) when the series is shorter than the window.
func BollingerBands(prices []float64, window int, numStdDev float64) (upper, lower float64) {
	if window <= 0 || len(prices) < window {
		return 0, 0
	}
	mean := SMA(prices, window)
	var varsum float64
	for i := len(prices) - window; i < len(prices); i++ {
		d := prices[i] - mean
		varsum += d * d
	}
	std := math.Sqrt(varsum / float64(window))
	return mean + numStdDev*std, mean - numStdDev*std
}

// StdDev returns the population standard deviation of the last window prices,
// or 0 when the series is shorter than the window.
func StdDev(prices []float64, window int) float64 {
	if window <= 0 || len(prices) < window {
		return 0
	}
	mean := SMA(prices, window)
	var varsum float64
	for i := len(prices) - window; i < len(prices); i++ {
		d := prices[i] - mean
		varsum += d * d
	}
	return math.Sqrt(varsum / float64(window))
}

// ResistanceLevel returns the maximum of the series, or 0 for an empty series.
func ResistanceLevel(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	max := prices[0]
	for _, p := range prices[1:] {
		if p > max {
			max = p
		}
	}
	return max
}

// CCI computes the Commodity Channel Index of the last value against the
// rolling mean and standard deviation over the window. Returns 0 when data is
// insufficient or the series is flat.
func CCI(prices []float64, window int) float64 {
	if window <= 0 || len(prices) < window {
		return 0
	}
	mean := SMA(prices, window)
	std := StdDev(prices, window)
	if std == 0 {
		return 0
	}
	return (prices[len(prices)-1] - mean) / (0.015 * std)
}
