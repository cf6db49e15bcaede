package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists extraction snapshots to a SQLite database.
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

	// WAL mode so dashboards can read while the service writes.
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
		`CREATE TABLE IF NOT EXISTS extractions (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			broker        TEXT,
			attempts      INTEGER,
			duration_ms   INTEGER,
			holding_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_ts ON extractions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS extraction_holdings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			extraction_id  TEXT NOT NULL,
			symbol         TEXT NOT NULL,
			current_value  TEXT,
			pct_of_account TEXT,
			quantity       TEXT,
			cost_basis     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_extraction ON extraction_holdings(extraction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_symbol ON extraction_holdings(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordExtraction(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO extractions
		(id, timestamp, broker, attempts, duration_ms, holding_count)
		VALUES (?,?,?,?,?,?)`,
		snap.ID, time.Now().Unix(), string(snap.Broker),
		snap.Attempts, snap.Duration.Milliseconds(), len(snap.Holdings),
	); err != nil {
		return fmt.Errorf("insert extraction: %w", err)
	}

	for _, h := range snap.Holdings {
		if _, err := tx.Exec(`INSERT INTO extraction_holdings
			(extraction_id, symbol, current_value, pct_of_account, quantity, cost_basis)
			VALUES (?,?,?,?,?,?)`,
			snap.ID, h.Symbol, h.CurrentValue, h.PctOfAccount, h.Quantity, h.CostBasis,
		); err != nil {
			return fmt.Errorf("insert holding %s: %w", h.Symbol, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
