package risk

import "fmt"

// Limits holds the capital-preservation configuration. It is immutable for
// the lifetime of a run; the bot refuses to start with undefined limits.
type Limits struct {
	StopLossThreshold float64 `yaml:"stop_loss_threshold"` // fraction below entry, in (0,1)
	TrailPercent      float64 `yaml:"trail_percent"`       // fraction below the high-water price, in (0,1)
	RiskPerTrade      float64 `yaml:"risk_per_trade"`      // fraction of balance risked per trade
	MaxDrawdown       float64 `yaml:"max_drawdown"`        // halt when drawdown exceeds this fraction
	MaxPositionSize   float64 `yaml:"max_position_size"`   // cap per position as a fraction of balance
	MaxLeverage       float64 `yaml:"max_leverage"`        // margin = size / max_leverage
	MarginRatio       float64 `yaml:"margin_ratio"`        // margin call when used/balance reaches this
	ProfitTarget      float64 `yaml:"profit_target"`       // optional take-profit fraction above entry, 0 disables
}

// Validate reports the first missing or out-of-range limit. A validation
// failure is fatal at startup: the engine must not run with undefined limits.
func (l Limits) Validate() error {
	if l.StopLossThreshold <= 0 || l.StopLossThreshold >= 1 {
		return fmt.Errorf("stop_loss_threshold must be in (0,1), got %v", l.StopLossThreshold)
	}
	if l.TrailPercent <= 0 || l.TrailPercent >= 1 {
		return fmt.Errorf("trail_percent must be in (0,1), got %v", l.TrailPercent)
	}
	if l.RiskPerTrade <= 0 {
		return fmt.Errorf("risk_per_trade must be positive, got %v", l.RiskPerTrade)
	}
	if l.MaxDrawdown <= 0 || l.MaxDrawdown >= 1 {
		return fmt.Errorf("max_drawdown must be in (0,1), got %v", l.MaxDrawdown)
	}
	if l.MaxPositionSize <= 0 || l.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0,1], got %v", l.MaxPositionSize)
	}
	if l.MaxLeverage < 1 {
		return fmt.Errorf("max_leverage must be >= 1, got %v", l.MaxLeverage)
	}
	if l.MarginRatio <= 0 || l.MarginRatio > 1 {
		return fmt.Errorf("margin_ratio must be in (0,1], got %v", l.MarginRatio)
	}
	if l.ProfitTarget < 0 {
		return fmt.Errorf("profit_target must not be negative, got %v", l.ProfitTarget)
	}
	return nil
}
