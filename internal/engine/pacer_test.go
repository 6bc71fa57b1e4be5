package engine

import (
	"context"
	"testing"
	"time"
)

func TestPacerZeroIntervalReturnsImmediately(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero interval should not block, waited %s", elapsed)
	}
}

func TestPacerWaitsForInterval(t *testing.T) {
	p := NewPacer(30 * time.Millisecond)
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("returned after %s, expected at least the interval", elapsed)
	}
}

func TestPacerCanceledContext(t *testing.T) {
	p := NewPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("expected context error")
	}
}
