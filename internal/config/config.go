package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"coinpilot/internal/risk"
)

// Pair names one tradable symbol on one venue.
type Pair struct {
	Symbol string `yaml:"symbol"`
	Venue  string `yaml:"venue"`
}

// Config holds all application configuration.
type Config struct {
	Trading struct {
		Pairs           []Pair  `yaml:"pairs"`
		BalanceToken    string  `yaml:"balance_token"`
		InitialBalance  float64 `yaml:"initial_balance"`
		RequestedAmount float64 `yaml:"requested_amount"`
		TradeFraction   float64 `yaml:"trade_fraction"`
		HistoryWindow   int     `yaml:"history_window"`
		PaceSeconds     int     `yaml:"pace_seconds"`
	} `yaml:"trading"`
	Risk     risk.Limits `yaml:"risk"`
	Strategy struct {
		Name             string  `yaml:"name"` // breakout, momentum, reversal
		BuyWindow        int     `yaml:"buy_window"`
		SellWindow       int     `yaml:"sell_window"`
		TrendWindow      int     `yaml:"trend_window"`
		DeviationFactor  float64 `yaml:"deviation_factor"`
		OversoldRSI      float64 `yaml:"oversold_rsi"`
		ResistanceSample int     `yaml:"resistance_sample"`
		ResistanceFloor  float64 `yaml:"resistance_floor"`
	} `yaml:"strategy"`
	Provider struct {
		Kind    string `yaml:"kind"` // paper, rest, stream
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		WSURL   string `yaml:"ws_url"`
		Seed    int64  `yaml:"seed"` // paper provider rng seed
	} `yaml:"provider"`
	Broker struct {
		Kind    string `yaml:"kind"` // paper, rest
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"broker"`
	Schedule struct {
		CycleCron string `yaml:"cycle_cron"`
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Simulation struct {
		Runs    int     `yaml:"runs"`
		Steps   int     `yaml:"steps"`
		WinRate float64 `yaml:"win_rate"`
		AvgWin  float64 `yaml:"avg_win"`
		AvgLoss float64 `yaml:"avg_loss"`
		Seed    int64   `yaml:"seed"`
	} `yaml:"simulation"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A .env file in the working directory is loaded first when
// present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("VENUE_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("VENUE_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("BROKER_BASE_URL"); v != "" {
		cfg.Broker.BaseURL = v
	}
	if v := os.Getenv("BROKER_API_KEY"); v != "" {
		cfg.Broker.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.InitialBalance = f
		}
	}
	if v := os.Getenv("CRON_CYCLE"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	// Defaults
	if cfg.Trading.BalanceToken == "" {
		cfg.Trading.BalanceToken = "USDT"
	}
	if cfg.Trading.TradeFraction == 0 {
		cfg.Trading.TradeFraction = 0.2
	}
	if cfg.Trading.HistoryWindow == 0 {
		cfg.Trading.HistoryWindow = 200
	}
	if cfg.Trading.InitialBalance == 0 {
		cfg.Trading.InitialBalance = 100000
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "breakout"
	}
	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = "paper"
	}
	if cfg.Broker.Kind == "" {
		cfg.Broker.Kind = "paper"
	}
	if cfg.Schedule.CycleCron == "" {
		cfg.Schedule.CycleCron = "0 * * * * *"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 22 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/coinpilot.db"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Simulation.Runs == 0 {
		cfg.Simulation.Runs = 1000
	}
	if cfg.Simulation.Steps == 0 {
		cfg.Simulation.Steps = 30
	}
	if cfg.Simulation.WinRate == 0 {
		cfg.Simulation.WinRate = 0.5
	}
	if cfg.Simulation.AvgWin == 0 {
		cfg.Simulation.AvgWin = 0.02
	}
	if cfg.Simulation.AvgLoss == 0 {
		cfg.Simulation.AvgLoss = 0.02
	}

	return cfg, nil
}

// Validate checks that all required fields are set. Risk limits are required
// in full: the bot refuses to start without them.
func (c *Config) Validate() error {
	if len(c.Trading.Pairs) == 0 {
		return fmt.Errorf("trading.pairs is required")
	}
	for i, p := range c.Trading.Pairs {
		if p.Symbol == "" || p.Venue == "" {
			return fmt.Errorf("trading.pairs[%d]: symbol and venue are required", i)
		}
	}
	if c.Trading.TradeFraction <= 0 || c.Trading.TradeFraction > 1 {
		return fmt.Errorf("trading.trade_fraction must be in (0,1]")
	}
	if c.Trading.InitialBalance <= 0 {
		return fmt.Errorf("trading.initial_balance must be positive")
	}
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	switch c.Strategy.Name {
	case "breakout", "momentum", "reversal":
	default:
		return fmt.Errorf("strategy.name must be breakout, momentum, or reversal, got %q", c.Strategy.Name)
	}
	switch c.Provider.Kind {
	case "paper":
	case "rest":
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the rest provider")
		}
	case "stream":
		if c.Provider.WSURL == "" {
			return fmt.Errorf("provider.ws_url is required for the stream provider")
		}
	default:
		return fmt.Errorf("provider.kind must be paper, rest, or stream, got %q", c.Provider.Kind)
	}
	switch c.Broker.Kind {
	case "paper":
	case "rest":
		if c.Broker.BaseURL == "" {
			return fmt.Errorf("broker.base_url is required for the rest broker")
		}
	default:
		return fmt.Errorf("broker.kind must be paper or rest, got %q", c.Broker.Kind)
	}
	return nil
}
