package engine

import (
	"context"
	"time"
)

// Pacer spaces consecutive venue interactions to respect collaborator rate
// limits. A zero interval disables pacing.
type Pacer struct {
	interval time.Duration
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks for the configured interval or until the context is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.interval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
