package recorder

// DecisionEvent records the outcome of evaluating one symbol/venue pair in a
// cycle.
type DecisionEvent struct {
	Symbol   string
	Venue    string
	Action   string // "buy", "sell", "hold", "skip"
	Reason   string
	Price    float64
	Balance  float64
	Drawdown float64
}

// TradeEvent records an order accepted by the execution sink.
type TradeEvent struct {
	OrderID string
	Symbol  string
	Venue   string
	Side    string
	Size    float64
	Price   float64
	Reason  string
}

// HaltEvent records a drawdown halt.
type HaltEvent struct {
	Balance       float64
	HighWaterMark float64
	Drawdown      float64
}

// SummaryEvent records a daily account snapshot.
type SummaryEvent struct {
	Balance       float64
	HighWaterMark float64
	Drawdown      float64
	OpenPositions int
	Halted        bool
}

// Recorder persists decision history for later analysis.
type Recorder interface {
	RecordDecision(evt *DecisionEvent) error
	RecordTrade(evt *TradeEvent) error
	RecordHalt(evt *HaltEvent) error
	RecordSummary(evt *SummaryEvent) error
	Close() error
}
