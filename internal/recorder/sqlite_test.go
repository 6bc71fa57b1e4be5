package recorder

import (
	"path/filepath"
	"testing"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func countRows(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	r := openTestRecorder(t)

	if err := r.RecordDecision(&DecisionEvent{
		Symbol: "BTC/USDT", Venue: "paper", Action: "buy", Reason: "ord-1",
		Price: 100, Balance: 99900, Drawdown: 0.001,
	}); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if err := r.RecordTrade(&TradeEvent{
		OrderID: "ord-1", Symbol: "BTC/USDT", Venue: "paper", Side: "buy",
		Size: 100, Price: 100, Reason: "entry signal",
	}); err != nil {
		t.Fatalf("record trade: %v", err)
	}
	if err := r.RecordHalt(&HaltEvent{Balance: 79000, HighWaterMark: 100000, Drawdown: 0.21}); err != nil {
		t.Fatalf("record halt: %v", err)
	}
	if err := r.RecordSummary(&SummaryEvent{
		Balance: 79000, HighWaterMark: 100000, Drawdown: 0.21, OpenPositions: 1, Halted: true,
	}); err != nil {
		t.Fatalf("record summary: %v", err)
	}

	for _, table := range []string{"decisions", "trades", "halts", "summaries"} {
		if n := countRows(t, r, table); n != 1 {
			t.Errorf("%s: expected 1 row, got %d", table, n)
		}
	}

	var action, reason string
	if err := r.db.QueryRow("SELECT action, reason FROM decisions").Scan(&action, &reason); err != nil {
		t.Fatalf("query decision: %v", err)
	}
	if action != "buy" || reason != "ord-1" {
		t.Errorf("unexpected decision row: %s/%s", action, reason)
	}
}

func TestSQLiteRecorderReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.RecordHalt(&HaltEvent{Balance: 1, HighWaterMark: 2, Drawdown: 0.5}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Migrations are idempotent and earlier rows survive.
	r2, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	if n := countRows(t, r2, "halts"); n != 1 {
		t.Errorf("expected persisted halt row, got %d", n)
	}
}
