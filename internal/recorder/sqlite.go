package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists decision history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			venue     TEXT,
			action    TEXT,
			reason    TEXT,
			price     REAL,
			balance   REAL,
			drawdown  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			order_id  TEXT,
			symbol    TEXT,
			venue     TEXT,
			side      TEXT,
			size      REAL,
			price     REAL,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,

		`CREATE TABLE IF NOT EXISTS halts (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			balance         REAL,
			high_water_mark REAL,
			drawdown        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_halts_ts ON halts(timestamp)`,

		`CREATE TABLE IF NOT EXISTS summaries (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			balance         REAL,
			high_water_mark REAL,
			drawdown        REAL,
			open_positions  INTEGER,
			halted          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_ts ON summaries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDecision(evt *DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO decisions
		(timestamp, symbol, venue, action, reason, price, balance, drawdown)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, evt.Venue, evt.Action, evt.Reason,
		evt.Price, evt.Balance, evt.Drawdown,
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(evt *TradeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, order_id, symbol, venue, side, size, price, reason)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.OrderID, evt.Symbol, evt.Venue, evt.Side,
		evt.Size, evt.Price, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordHalt(evt *HaltEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO halts
		(timestamp, balance, high_water_mark, drawdown)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Balance, evt.HighWaterMark, evt.Drawdown,
	)
	return err
}

func (r *SQLiteRecorder) RecordSummary(evt *SummaryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	halted := 0
	if evt.Halted {
		halted = 1
	}
	_, err := r.db.Exec(`INSERT INTO summaries
		(timestamp, balance, high_water_mark, drawdown, open_positions, halted)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Balance, evt.HighWaterMark, evt.Drawdown,
		evt.OpenPositions, halted,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
