package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"dataprep-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink stores enriched rows in a local database, one transaction per
// instrument so a failed write rolls back to nothing. Undefined indicator
// values become SQL NULL.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens the database with WAL mode and initializes the schema.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open sink: %w", err)
	}

	// Single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite-sink] opened database at %s", dbPath)
	return &SQLiteSink{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS enriched_bars (
			instrument       TEXT    NOT NULL,
			open_time        INTEGER NOT NULL,
			open             REAL    NOT NULL,
			high             REAL    NOT NULL,
			close            REAL    NOT NULL,
			volume           REAL    NOT NULL,
			close_time       INTEGER NOT NULL,
			rsi              REAL,
			stoch_rsi_smooth REAL,
			wma              REAL,
			sma              REAL,
			PRIMARY KEY (instrument, open_time)
		);
	`)
	return err
}

// Write inserts all rows of the table in a single transaction.
func (s *SQLiteSink) Write(ctx context.Context, table model.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO enriched_bars
			(instrument, open_time, open, high, close, volume, close_time,
			 rsi, stoch_rsi_smooth, wma, sma)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for i := range table.Rows {
		row := &table.Rows[i]
		_, err := stmt.ExecContext(ctx,
			table.Instrument, row.OpenTime, row.Open, row.High, row.Close, row.Volume, row.CloseTime,
			nullable(row.RSI), nullable(row.StochRSISmooth), nullable(row.WMA), nullable(row.SMA),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func nullable(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.V, Valid: v.Defined}
}

// DB returns the underlying sql.DB for health checks.
func (s *SQLiteSink) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
