package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"coinpilot/internal/alert"
	"coinpilot/internal/broker"
	"coinpilot/internal/market"
	"coinpilot/internal/metrics"
	"coinpilot/internal/model"
	"coinpilot/internal/recorder"
	"coinpilot/internal/risk"
	"coinpilot/internal/signal"
)

// ErrHalted is returned by RunCycle when the drawdown ceiling is breached.
// The halt is global: no further pairs are evaluated this run.
var ErrHalted = errors.New("drawdown limit breached, trading halted")

// Pair names one symbol on one venue.
type Pair struct {
	Symbol string
	Venue  string
}

// Config tunes the decision loop.
type Config struct {
	Pairs           []Pair
	BalanceToken    string        // token whose balance funds trades
	RequestedAmount float64       // per-trade request; 0 means the full balance
	TradeFraction   float64       // fraction of the eligible amount per trade
	HistoryWindow   int           // price history length fetched per cycle
	PaceInterval    time.Duration // delay between consecutive pairs
}

// Engine runs the decision loop: for each configured pair it fetches market
// state, evaluates the strategy, consults the risk controller, submits
// orders, and settles the account. Single-threaded by design; the risk
// controller carries the only cross-pair state.
type Engine struct {
	cfg      Config
	provider market.Provider
	sink     broker.Sink
	strategy signal.Strategy
	risk     *risk.Controller
	rec      recorder.Recorder
	notifier alert.Notifier
	pacer    *Pacer
}

// New creates an Engine. The recorder and notifier may be nil; they default
// to no-op and log-only implementations.
func New(cfg Config, provider market.Provider, sink broker.Sink, strategy signal.Strategy,
	ctrl *risk.Controller, rec recorder.Recorder, notifier alert.Notifier) (*Engine, error) {
	if len(cfg.Pairs) == 0 {
		return nil, errors.New("no symbol/venue pairs configured")
	}
	if cfg.TradeFraction <= 0 || cfg.TradeFraction > 1 {
		return nil, fmt.Errorf("trade fraction must be in (0,1], got %v", cfg.TradeFraction)
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 200
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if notifier == nil {
		notifier = alert.NewLogNotifier()
	}
	return &Engine{
		cfg:      cfg,
		provider: provider,
		sink:     sink,
		strategy: strategy,
		risk:     ctrl,
		rec:      rec,
		notifier: notifier,
		pacer:    NewPacer(cfg.PaceInterval),
	}, nil
}

// RunCycle processes every configured pair once. It returns ErrHalted when
// the drawdown gate fires; transient collaborator failures only skip the
// affected pair.
func (e *Engine) RunCycle(ctx context.Context) error {
	for i, pair := range e.cfg.Pairs {
		if i > 0 {
			if err := e.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		if err := e.processPair(ctx, pair); err != nil {
			return err
		}
	}
	metrics.CycleDone()
	return nil
}

func (e *Engine) processPair(ctx context.Context, pair Pair) error {
	balance, err := e.provider.Balance(e.cfg.BalanceToken, pair.Venue)
	if err != nil || balance <= 0 {
		e.skip(pair, 0, "balance unavailable", err)
		return nil
	}
	price, err := e.provider.Price(pair.Symbol, pair.Venue)
	if err != nil || price <= 0 {
		e.skip(pair, price, "price unavailable", err)
		return nil
	}
	history, err := e.provider.History(pair.Symbol, pair.Venue, e.cfg.HistoryWindow)
	if err != nil {
		e.skip(pair, price, "history unavailable", err)
		return nil
	}

	requested := e.cfg.RequestedAmount
	if requested <= 0 || requested > balance {
		requested = balance
	}
	eligible := requested * e.cfg.TradeFraction

	if _, open := e.risk.Position(pair.Symbol, pair.Venue); open {
		e.handleOpen(ctx, pair, price, history)
	} else {
		e.handleFlat(ctx, pair, price, eligible, history)
	}

	return e.settle(pair)
}

// handleOpen drives an open position: risk exits first, then the strategy's
// sell signal. Sell takes precedence over a simultaneous buy signal while a
// position is open.
func (e *Engine) handleOpen(ctx context.Context, pair Pair, price float64, history []float64) {
	pos, _ := e.risk.Position(pair.Symbol, pair.Venue)

	if exit, closed := e.risk.Observe(pair.Symbol, pair.Venue, price); closed {
		log.Printf("[INFO] %s@%s: %s at %.4f (stop %.4f, entry %.4f)",
			pair.Symbol, pair.Venue, exit.Reason, price, exit.StopPrice, pos.EntryPrice)
		e.submitSell(ctx, pair, pos.Size, price, string(exit.Reason))
		return
	}

	if e.strategy.ShouldExit(pair.Symbol, price, history) {
		log.Printf("[INFO] %s@%s: sell signal at %.4f (entry %.4f)",
			pair.Symbol, pair.Venue, price, pos.EntryPrice)
		// The position stays open until the venue accepts the sell; a
		// rejected order must keep its stop protection alive.
		if e.submitSell(ctx, pair, pos.Size, price, string(risk.CloseSellSignal)) {
			e.risk.ClosePosition(pair.Symbol, pair.Venue, risk.CloseSellSignal)
		}
		return
	}

	e.record("hold", pair, price, "position open")
}

// handleFlat opens a position when the strategy signals entry and the risk
// controller permits it.
func (e *Engine) handleFlat(ctx context.Context, pair Pair, price, eligible float64, history []float64) {
	if !e.strategy.ShouldEnter(pair.Symbol, price, history) {
		e.record("hold", pair, price, "no signal")
		return
	}
	if e.risk.Halted() {
		log.Printf("[WARN] %s@%s: buy signal suppressed, drawdown halt active", pair.Symbol, pair.Venue)
		e.record("skip", pair, price, "halted")
		return
	}
	if e.risk.MarginCall() {
		log.Printf("[WARN] %s@%s: buy signal suppressed, margin call active", pair.Symbol, pair.Venue)
		e.record("skip", pair, price, "margin call")
		return
	}

	stopPrice := price * (1 - e.risk.Limits().TrailPercent)
	size, err := e.risk.TradeSize(stopPrice)
	if err != nil {
		log.Printf("[WARN] %s@%s: trade skipped, %v", pair.Symbol, pair.Venue, err)
		e.record("skip", pair, price, "degenerate sizing")
		return
	}
	if size > eligible {
		size = eligible
	}
	if size <= 0 {
		log.Printf("[INFO] %s@%s: trade skipped, insufficient balance", pair.Symbol, pair.Venue)
		e.record("skip", pair, price, "insufficient balance")
		return
	}

	order := model.Order{Symbol: pair.Symbol, Side: model.Buy, Size: size, Price: price, Venue: pair.Venue}
	metrics.OrderAttempted()
	orderID, err := e.sink.SubmitOrder(ctx, order)
	if err != nil {
		metrics.OrderRejected()
		log.Printf("[WARN] %s@%s: buy order not filled: %v", pair.Symbol, pair.Venue, err)
		e.record("skip", pair, price, "order rejected")
		return
	}
	if err := e.risk.OpenPosition(pair.Symbol, pair.Venue, price, size); err != nil {
		log.Printf("[ERROR] %s@%s: order %s filled but position rejected: %v",
			pair.Symbol, pair.Venue, orderID, err)
		return
	}
	metrics.OrderFilled(string(model.Buy))
	log.Printf("[INFO] %s@%s: buy executed, size %.4f at %.4f (order %s)",
		pair.Symbol, pair.Venue, size, price, orderID)
	e.record("buy", pair, price, orderID)
	e.recordTrade(orderID, pair, model.Buy, size, price, "entry signal")
}

func (e *Engine) submitSell(ctx context.Context, pair Pair, size, price float64, reason string) bool {
	order := model.Order{Symbol: pair.Symbol, Side: model.Sell, Size: size, Price: price, Venue: pair.Venue}
	metrics.OrderAttempted()
	orderID, err := e.sink.SubmitOrder(ctx, order)
	if err != nil {
		metrics.OrderRejected()
		log.Printf("[WARN] %s@%s: sell order not filled: %v", pair.Symbol, pair.Venue, err)
		e.record("skip", pair, price, "order rejected")
		return false
	}
	metrics.OrderFilled(string(model.Sell))
	log.Printf("[INFO] %s@%s: sell executed, size %.4f at %.4f (order %s)",
		pair.Symbol, pair.Venue, size, price, orderID)
	e.record("sell", pair, price, orderID)
	e.recordTrade(orderID, pair, model.Sell, size, price, reason)
	return true
}

// settle refreshes the account balance from the venue and applies the
// drawdown gate. A breach stops the whole run, not just this pair.
func (e *Engine) settle(pair Pair) error {
	balance, err := e.provider.Balance(e.cfg.BalanceToken, pair.Venue)
	if err != nil {
		log.Printf("[WARN] %s: balance refresh failed: %v", pair.Venue, err)
	} else if balance > 0 {
		e.risk.UpdateBalance(balance)
	}

	drawdown := e.risk.Drawdown()
	metrics.SetAccount(e.risk.Balance(), drawdown, e.risk.OpenPositions())

	if e.risk.Halted() {
		metrics.HaltTriggered()
		msg := fmt.Sprintf("drawdown %.2f%% exceeds limit, halting trading (balance %.2f, peak %.2f)",
			drawdown*100, e.risk.Balance(), e.risk.HighWaterMark())
		log.Printf("[WARN] halt triggered: %s", msg)
		if err := e.notifier.Notify(msg); err != nil {
			log.Printf("[WARN] halt alert failed: %v", err)
		}
		if err := e.rec.RecordHalt(&recorder.HaltEvent{
			Balance:       e.risk.Balance(),
			HighWaterMark: e.risk.HighWaterMark(),
			Drawdown:      drawdown,
		}); err != nil {
			log.Printf("[WARN] record halt: %v", err)
		}
		return ErrHalted
	}
	return nil
}

func (e *Engine) skip(pair Pair, price float64, reason string, err error) {
	if err != nil {
		log.Printf("[WARN] %s@%s: skipped this cycle, %s: %v", pair.Symbol, pair.Venue, reason, err)
	} else {
		log.Printf("[WARN] %s@%s: skipped this cycle, %s", pair.Symbol, pair.Venue, reason)
	}
	metrics.PairSkipped(reason)
	e.record("skip", pair, price, reason)
}

func (e *Engine) record(action string, pair Pair, price float64, reason string) {
	if err := e.rec.RecordDecision(&recorder.DecisionEvent{
		Symbol:   pair.Symbol,
		Venue:    pair.Venue,
		Action:   action,
		Reason:   reason,
		Price:    price,
		Balance:  e.risk.Balance(),
		Drawdown: e.risk.Drawdown(),
	}); err != nil {
		log.Printf("[WARN] record decision: %v", err)
	}
}

func (e *Engine) recordTrade(orderID string, pair Pair, side model.Side, size, price float64, reason string) {
	if err := e.rec.RecordTrade(&recorder.TradeEvent{
		OrderID: orderID,
		Symbol:  pair.Symbol,
		Venue:   pair.Venue,
		Side:    string(side),
		Size:    size,
		Price:   price,
		Reason:  reason,
	}); err != nil {
		log.Printf("[WARN] record trade: %v", err)
	}
}
