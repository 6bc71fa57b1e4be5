package model

import "time"

// PricePoint is a single timestamped observation for one symbol.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries holds an ordered sequence of price observations for one symbol.
// Timestamps are strictly increasing; points are appended, never rewritten.
type PriceSeries struct {
	Symbol string
	Venue  string
	Points []PricePoint
}

// Append adds a point to the series. Points with a timestamp not after the
// last one are dropped to keep the series strictly ordered.
func (s *PriceSeries) Append(p PricePoint) bool {
	if n := len(s.Points); n > 0 && !p.Time.After(s.Points[n-1].Time) {
		return false
	}
	s.Points = append(s.Points, p)
	return true
}

// Prices returns the raw price values in order.
func (s *PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Last returns the most recent price, or 0 if the series is empty.
func (s *PriceSeries) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Price
}

// Candle represents a single OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close prices from a bar sequence.
func Closes(bars []Candle) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
