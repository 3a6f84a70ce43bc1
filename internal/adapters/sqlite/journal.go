package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradepilot/internal/domain"
	"tradepilot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// memoryDSN keeps the journal entirely in process memory: nothing outlives the
// process, which is the default deployment.
const memoryDSN = ":memory:"

// Journal implements ports.TradeJournal using SQLite. The default in-memory
// DSN gives an append-only, queryable record log scoped to one process; a file
// DSN can be configured for debugging sessions.
type Journal struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite journal.
type Config struct {
	DSN    string // ":memory:" (default) or a file path
	Logger ports.Logger
}

// NewJournal creates a new SQLite journal instance.
func NewJournal(cfg Config) (*Journal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite journal")
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = memoryDSN
	}

	if dsn != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			err = fmt.Errorf("failed to create journal directory '%s': %w", filepath.Dir(dsn), err)
			cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
			return nil, err
		}
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("%w: failed to open journal at '%s': %w", ports.ErrJournalUnavailable, dsn, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	// A single connection keeps the in-memory database alive: every
	// connection to ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping journal at '%s': %w", ports.ErrJournalUnavailable, dsn, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	j := &Journal{db: db, logger: cfg.Logger}
	if err := j.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize journal schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite trade journal ready", map[string]interface{}{"dsn": dsn})
	return j, nil
}

func (j *Journal) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_records (
		id TEXT PRIMARY KEY,
		ts TIMESTAMP NOT NULL,
		action TEXT NOT NULL,
		symbol TEXT NOT NULL,
		amount REAL NOT NULL,
		price REAL NOT NULL,
		value REAL NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_trade_records_symbol_ts ON trade_records (symbol, ts);
	CREATE INDEX IF NOT EXISTS idx_trade_records_status ON trade_records (status);
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Append stores one trade record. Records are immutable once written.
func (j *Journal) Append(ctx context.Context, record *domain.TradeRecord) error {
	if record == nil {
		return fmt.Errorf("%w: nil trade record", ports.ErrInvalidRequest)
	}
	const query = `
	INSERT INTO trade_records (id, ts, action, symbol, amount, price, value, mode, status, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := j.db.ExecContext(ctx, query,
		record.ID,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		string(record.Action),
		record.Symbol,
		record.Amount,
		record.Price,
		record.Value,
		string(record.Mode),
		string(record.Status),
		record.Reason,
	)
	if err != nil {
		return fmt.Errorf("%w: appending trade record %s: %w", ports.ErrQueryFailed, record.ID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
	SELECT id, ts, action, symbol, amount, price, value, mode, status, reason
	FROM trade_records ORDER BY ts DESC, id LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing trade records: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var records []*domain.TradeRecord
	for rows.Next() {
		var (
			rec    domain.TradeRecord
			ts     string
			action string
			mode   string
			status string
		)
		if err := rows.Scan(&rec.ID, &ts, &action, &rec.Symbol, &rec.Amount, &rec.Price, &rec.Value, &mode, &status, &rec.Reason); err != nil {
			return nil, fmt.Errorf("%w: scanning trade record: %w", ports.ErrQueryFailed, err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing trade timestamp '%s': %w", ports.ErrQueryFailed, ts, err)
		}
		rec.Timestamp = parsed
		rec.Action = domain.Action(action)
		rec.Mode = domain.Mode(mode)
		rec.Status = domain.TradeStatus(status)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trade records: %w", ports.ErrQueryFailed, err)
	}
	return records, nil
}

// CountByStatus returns how many records carry the given terminal status.
func (j *Journal) CountByStatus(ctx context.Context, status domain.TradeStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM trade_records WHERE status = ?`
	var count int
	if err := j.db.QueryRowContext(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting trade records: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
