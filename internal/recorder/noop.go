package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDecision(_ *DecisionEvent) error { return nil }
func (n *NoopRecorder) RecordTrade(_ *TradeEvent) error       { return nil }
func (n *NoopRecorder) RecordHalt(_ *HaltEvent) error         { return nil }
func (n *NoopRecorder) RecordSummary(_ *SummaryEvent) error   { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
