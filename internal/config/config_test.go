package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
trading:
  pairs:
    - symbol: BTC/USDT
      venue: paper
  initial_balance: 50000
risk:
  stop_loss_threshold: 0.05
  trail_percent: 0.1
  risk_per_trade: 0.01
  max_drawdown: 0.2
  max_position_size: 0.5
  max_leverage: 5
  margin_ratio: 0.9
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trading.BalanceToken != "USDT" {
		t.Errorf("default balance token: got %q", cfg.Trading.BalanceToken)
	}
	if cfg.Trading.TradeFraction != 0.2 {
		t.Errorf("default trade fraction: got %v", cfg.Trading.TradeFraction)
	}
	if cfg.Provider.Kind != "paper" || cfg.Broker.Kind != "paper" {
		t.Errorf("default provider/broker: got %q/%q", cfg.Provider.Kind, cfg.Broker.Kind)
	}
	if cfg.Schedule.CycleCron == "" || cfg.Schedule.DailyCron == "" {
		t.Error("cron defaults not applied")
	}
	if cfg.Trading.InitialBalance != 50000 {
		t.Errorf("yaml value overridden by default: got %v", cfg.Trading.InitialBalance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config should validate: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SQLITE_PATH", "/tmp/override.db")
	t.Setenv("CRON_CYCLE", "0 */5 * * * *")
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.SQLitePath != "/tmp/override.db" {
		t.Errorf("env override ignored: got %q", cfg.Database.SQLitePath)
	}
	if cfg.Schedule.CycleCron != "0 */5 * * * *" {
		t.Errorf("env override ignored: got %q", cfg.Schedule.CycleCron)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be fatal: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("defaults alone must not validate: pairs and risk limits are required")
	}
}

func TestValidateRejectsMissingRiskLimits(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
trading:
  pairs:
    - symbol: BTC/USDT
      venue: paper
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing risk limits")
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML+`
strategy:
  name: martingale
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown strategy")
	}
}

func TestValidateRejectsRestProviderWithoutURL(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML+`
provider:
  kind: rest
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for rest provider without base_url")
	}
}
