// Package scheduler drives the trading cycle and the daily summary on cron
// schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"coinpilot/internal/alert"
	"coinpilot/internal/engine"
	"coinpilot/internal/recorder"
	"coinpilot/internal/risk"
	"coinpilot/internal/sim"

	"github.com/robfig/cron/v3"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *engine.Engine
	Risk     *risk.Controller
	Notifier alert.Notifier
	Recorder recorder.Recorder
	SimCfg   sim.Config
	Ctx      context.Context

	halted atomic.Bool
}

// NewScheduler creates a new Scheduler. A nil recorder defaults to noop and
// a nil notifier to log-only, same as engine.New.
func NewScheduler(ctx context.Context, eng *engine.Engine, ctrl *risk.Controller,
	notifier alert.Notifier, rec recorder.Recorder, simCfg sim.Config) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if notifier == nil {
		notifier = alert.NewLogNotifier()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Risk:     ctrl,
		Notifier: notifier,
		Recorder: rec,
		SimCfg:   simCfg,
		Ctx:      ctx,
	}
}

// RegisterAll registers the trading cycle and the daily summary.
func (s *Scheduler) RegisterAll(cycleCron, dailyCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	if _, err := s.Cron.AddFunc(dailyCron, s.dailySummary); err != nil {
		return fmt.Errorf("register daily summary: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow executes a trading cycle immediately (for RUN_ON_START).
func (s *Scheduler) RunCycleNow() {
	s.cycleTask()
}

// Halted reports whether a drawdown halt has latched. Once set, no further
// cycles run until the process restarts.
func (s *Scheduler) Halted() bool {
	return s.halted.Load()
}

func (s *Scheduler) cycleTask() {
	if s.halted.Load() {
		log.Println("[WARN] trading halted, cycle skipped")
		return
	}
	if err := s.Engine.RunCycle(s.Ctx); err != nil {
		if errors.Is(err, engine.ErrHalted) {
			s.halted.Store(true)
			log.Println("[WARN] trading halted until restart")
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[ERROR] trading cycle: %v", err)
	}
}

func (s *Scheduler) dailySummary() {
	log.Println("[INFO] running daily summary")

	balance := s.Risk.Balance()
	drawdown := s.Risk.Drawdown()
	report := fmt.Sprintf("Daily summary\nbalance: %.2f\npeak: %.2f\ndrawdown: %.2f%%\nopen positions: %d",
		balance, s.Risk.HighWaterMark(), drawdown*100, s.Risk.OpenPositions())
	if s.halted.Load() {
		report += "\ntrading: HALTED"
	}

	if s.SimCfg.Runs > 0 {
		summary, err := sim.MonteCarlo(balance, s.SimCfg)
		if err != nil {
			log.Printf("[ERROR] daily projection: %v", err)
		} else {
			report += fmt.Sprintf("\nprojection over %d trades: mean %.2f, p5 %.2f, p95 %.2f, loss odds %.1f%%",
				summary.Steps, summary.Mean, summary.P5, summary.P95, summary.LossRate*100)
		}
	}

	log.Printf("[INFO] %s", report)
	s.trySend(report)
	if err := s.Recorder.RecordSummary(&recorder.SummaryEvent{
		Balance:       balance,
		HighWaterMark: s.Risk.HighWaterMark(),
		Drawdown:      drawdown,
		OpenPositions: s.Risk.OpenPositions(),
		Halted:        s.halted.Load(),
	}); err != nil {
		log.Printf("[ERROR] record daily summary: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	var err error
	if rn, ok := s.Notifier.(alert.RetryNotifier); ok {
		err = rn.NotifyWithRetry(s.Ctx, text, 3)
	} else {
		err = s.Notifier.Notify(text)
	}
	if err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
