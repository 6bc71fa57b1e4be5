// Package sim provides Monte Carlo projections of account balance paths.
// The daily summary task uses it to report where the current win rate and
// trade sizing are likely to take the account.
package sim

import (
	"errors"
	"math/rand"
	"sort"
)

// Config parameterizes a Monte Carlo projection.
type Config struct {
	Runs    int     // number of simulated paths
	Steps   int     // trades per path
	WinRate float64 // probability a trade wins, in [0,1]
	AvgWin  float64 // fractional balance gain per winning trade
	AvgLoss float64 // fractional balance loss per losing trade
	Seed    int64   // rng seed; fixed seeds give reproducible summaries
}

// Summary aggregates the final balances of all simulated paths.
type Summary struct {
	Runs     int
	Steps    int
	Mean     float64
	Min      float64
	Max      float64
	P5       float64
	P95      float64
	LossRate float64 // fraction of paths ending below the initial balance
}

// MonteCarlo simulates Runs balance paths of Steps trades each and summarizes
// the final balances. Balances are multiplicative: a win scales by 1+AvgWin,
// a loss by 1-AvgLoss.
func MonteCarlo(initialBalance float64, cfg Config) (Summary, error) {
	if initialBalance <= 0 {
		return Summary{}, errors.New("initial balance must be positive")
	}
	if cfg.Runs <= 0 || cfg.Steps <= 0 {
		return Summary{}, errors.New("runs and steps must be positive")
	}
	if cfg.WinRate < 0 || cfg.WinRate > 1 {
		return Summary{}, errors.New("win rate must be in [0,1]")
	}
	if cfg.AvgWin < 0 || cfg.AvgLoss < 0 || cfg.AvgLoss >= 1 {
		return Summary{}, errors.New("avg_win must be >= 0 and avg_loss in [0,1)")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	finals := make([]float64, cfg.Runs)
	losses := 0
	for i := range finals {
		balance := initialBalance
		for s := 0; s < cfg.Steps; s++ {
			if rng.Float64() < cfg.WinRate {
				balance *= 1 + cfg.AvgWin
			} else {
				balance *= 1 - cfg.AvgLoss
			}
		}
		finals[i] = balance
		if balance < initialBalance {
			losses++
		}
	}
	sort.Float64s(finals)

	sum := 0.0
	for _, f := range finals {
		sum += f
	}
	return Summary{
		Runs:     cfg.Runs,
		Steps:    cfg.Steps,
		Mean:     sum / float64(cfg.Runs),
		Min:      finals[0],
		Max:      finals[cfg.Runs-1],
		P5:       percentile(finals, 0.05),
		P95:      percentile(finals, 0.95),
		LossRate: float64(losses) / float64(cfg.Runs),
	}, nil
}

// percentile picks the nearest-rank value from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
