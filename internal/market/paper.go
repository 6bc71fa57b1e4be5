package market

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"coinpilot/internal/model"
)

// PaperProvider simulates a venue in memory: each symbol follows a seeded
// random walk, and the account balance is adjusted by the paper execution
// sink as trades settle. Deterministic for a fixed seed.
type PaperProvider struct {
	mu       sync.Mutex
	rng      *rand.Rand
	balance  float64
	base     float64 // starting price for fresh symbols
	vol      float64 // per-step fractional move
	clock    time.Time
	series   map[string]*model.PriceSeries
	failures int // remaining injected failures, for tests
}

// NewPaperProvider creates a simulated venue with the given starting balance.
func NewPaperProvider(seed int64, balance float64) *PaperProvider {
	return &PaperProvider{
		rng:     rand.New(rand.NewSource(seed)),
		balance: balance,
		base:    100,
		vol:     0.02,
		clock:   time.Now(),
		series:  make(map[string]*model.PriceSeries),
	}
}

func (p *PaperProvider) Name() string { return "paper" }

// Price advances the symbol's random walk by one step and returns the new
// price.
func (p *PaperProvider) Price(symbol, venue string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failures > 0 {
		p.failures--
		return 0, fmt.Errorf("paper venue unavailable")
	}
	return p.step(symbol, venue), nil
}

// Balance returns the simulated account balance; the token argument is
// ignored, the paper venue holds a single quote-currency account.
func (p *PaperProvider) Balance(_, _ string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failures > 0 {
		p.failures--
		return 0, fmt.Errorf("paper venue unavailable")
	}
	return p.balance, nil
}

// History returns the last window prices for the symbol, extending the walk
// until enough points exist.
func (p *PaperProvider) History(symbol, venue string, window int) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failures > 0 {
		p.failures--
		return nil, fmt.Errorf("paper venue unavailable")
	}
	s := p.lookup(symbol, venue)
	for len(s.Points) < window {
		p.step(symbol, venue)
	}
	prices := s.Prices()
	return prices[len(prices)-window:], nil
}

// AdjustBalance settles a trade's cash effect; used by the paper sink.
func (p *PaperProvider) AdjustBalance(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += delta
}

// SetBalance overwrites the simulated balance.
func (p *PaperProvider) SetBalance(balance float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance = balance
}

// FailNext makes the next n calls report the venue as unavailable.
func (p *PaperProvider) FailNext(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = n
}

func (p *PaperProvider) lookup(symbol, venue string) *model.PriceSeries {
	s, ok := p.series[symbol]
	if !ok {
		s = &model.PriceSeries{Symbol: symbol, Venue: venue}
		p.series[symbol] = s
	}
	return s
}

func (p *PaperProvider) step(symbol, venue string) float64 {
	s := p.lookup(symbol, venue)
	last := s.Last()
	if last == 0 {
		last = p.base
	}
	next := last * (1 + p.vol*(p.rng.Float64()*2-1))
	if next <= 0 {
		next = last
	}
	p.clock = p.clock.Add(time.Minute)
	s.Append(model.PricePoint{Time: p.clock, Price: next})
	return next
}
