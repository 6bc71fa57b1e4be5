package main

import (
	"context"
	"flag"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"coinpilot/internal/alert"
	"coinpilot/internal/backtest"
	"coinpilot/internal/broker"
	"coinpilot/internal/config"
	"coinpilot/internal/engine"
	"coinpilot/internal/market"
	"coinpilot/internal/metrics"
	"coinpilot/internal/recorder"
	"coinpilot/internal/risk"
	"coinpilot/internal/scheduler"
	"coinpilot/internal/signal"
	"coinpilot/internal/sim"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] coinpilot starting...")

	backtestBars := flag.Int("backtest", 0, "replay N generated bars offline and exit")
	backtestSeed := flag.Int64("backtest-seed", 1, "rng seed for the generated series")
	flag.Parse()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	strategy := buildStrategy(cfg)
	log.Printf("[INFO] strategy: %s", strategy.Name())

	if *backtestBars > 0 {
		runBacktest(cfg, strategy, *backtestBars, *backtestSeed)
		return
	}

	// Init risk controller
	ctrl, err := risk.NewController(cfg.Risk, cfg.Trading.InitialBalance)
	if err != nil {
		log.Fatalf("[FATAL] init risk controller: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init market provider
	var provider market.Provider
	var paper *market.PaperProvider
	switch cfg.Provider.Kind {
	case "paper":
		paper = market.NewPaperProvider(cfg.Provider.Seed, cfg.Trading.InitialBalance)
		provider = paper
	case "rest":
		provider = market.NewRESTProvider(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy, 15*time.Second)
	case "stream":
		stream := market.NewStreamClient(cfg.Provider.WSURL)
		symbols := make([]string, 0, len(cfg.Trading.Pairs))
		for _, p := range cfg.Trading.Pairs {
			symbols = append(symbols, p.Symbol)
		}
		go stream.Run(ctx, symbols)
		inner := market.NewRESTProvider(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy, 15*time.Second)
		provider = market.NewStreamProvider(stream, inner)
	}
	log.Printf("[INFO] market provider: %s", provider.Name())

	// Init execution sink
	var sink broker.Sink
	switch cfg.Broker.Kind {
	case "paper":
		var settler broker.Settler
		if paper != nil {
			settler = paper
		}
		sink = broker.NewPaperSink(settler)
	case "rest":
		sink = broker.NewRESTSink(cfg.Broker.BaseURL, cfg.Broker.APIKey, cfg.Proxy, 15*time.Second)
	}
	log.Printf("[INFO] execution sink: %s", sink.Name())

	// Init notifier
	var notifier alert.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = alert.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Println("[INFO] telegram alerts enabled")
	} else {
		notifier = alert.NewLogNotifier()
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init engine
	pairs := make([]engine.Pair, 0, len(cfg.Trading.Pairs))
	for _, p := range cfg.Trading.Pairs {
		pairs = append(pairs, engine.Pair{Symbol: p.Symbol, Venue: p.Venue})
	}
	eng, err := engine.New(engine.Config{
		Pairs:           pairs,
		BalanceToken:    cfg.Trading.BalanceToken,
		RequestedAmount: cfg.Trading.RequestedAmount,
		TradeFraction:   cfg.Trading.TradeFraction,
		HistoryWindow:   cfg.Trading.HistoryWindow,
		PaceInterval:    time.Duration(cfg.Trading.PaceSeconds) * time.Second,
	}, provider, sink, strategy, ctrl, rec, notifier)
	if err != nil {
		log.Fatalf("[FATAL] init engine: %v", err)
	}

	// Serve Prometheus metrics
	metrics.Serve(cfg.Metrics.Addr)
	log.Printf("[INFO] metrics on %s", cfg.Metrics.Addr)

	// Init scheduler
	simCfg := sim.Config{
		Runs:    cfg.Simulation.Runs,
		Steps:   cfg.Simulation.Steps,
		WinRate: cfg.Simulation.WinRate,
		AvgWin:  cfg.Simulation.AvgWin,
		AvgLoss: cfg.Simulation.AvgLoss,
		Seed:    cfg.Simulation.Seed,
	}
	sched := scheduler.NewScheduler(ctx, eng, ctrl, notifier, rec, simCfg)
	if err := sched.RegisterAll(cfg.Schedule.CycleCron, cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing trading cycle now")
		go sched.RunCycleNow()
	}

	log.Println("[INFO] coinpilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] coinpilot stopped")
}

func buildStrategy(cfg *config.Config) signal.Strategy {
	switch cfg.Strategy.Name {
	case "momentum":
		return signal.NewMomentum(cfg.Strategy.BuyWindow, cfg.Strategy.TrendWindow)
	case "reversal":
		return signal.NewReversal(0, 0, cfg.Strategy.OversoldRSI)
	default:
		return signal.NewEvaluator(signal.Config{
			BuyWindow:        cfg.Strategy.BuyWindow,
			SellWindow:       cfg.Strategy.SellWindow,
			TrendWindow:      cfg.Strategy.TrendWindow,
			DeviationFactor:  cfg.Strategy.DeviationFactor,
			OversoldRSI:      cfg.Strategy.OversoldRSI,
			ResistanceSample: cfg.Strategy.ResistanceSample,
			ResistanceFloor:  cfg.Strategy.ResistanceFloor,
		})
	}
}

func runBacktest(cfg *config.Config, strategy signal.Strategy, bars int, seed int64) {
	runner, err := backtest.NewRunner(strategy, cfg.Risk, cfg.Trading.TradeFraction, cfg.Trading.HistoryWindow)
	if err != nil {
		log.Fatalf("[FATAL] init backtest: %v", err)
	}
	symbol := cfg.Trading.Pairs[0].Symbol
	prices := backtest.GenerateSeries(bars, 100, 0.02, seed)
	res, err := runner.Run(symbol, prices, cfg.Trading.InitialBalance)
	if err != nil {
		log.Fatalf("[FATAL] backtest: %v", err)
	}
	log.Printf("[INFO] backtest %s over %d bars: %d trades, win rate %.1f%%, final balance %.2f, max drawdown %.2f%%, halted=%v",
		symbol, res.Bars, res.Trades, res.WinRate*100, res.FinalBalance, res.MaxDrawdown*100, res.Halted)
}
