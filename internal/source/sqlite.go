package source

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"dataprep-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSource loads bar series from a local candle archive database.
// Expected schema:
//
//	CREATE TABLE bars (
//	    instrument TEXT    NOT NULL,
//	    open_time  INTEGER NOT NULL,
//	    open       REAL    NOT NULL,
//	    high       REAL    NOT NULL,
//	    close      REAL    NOT NULL,
//	    volume     REAL    NOT NULL,
//	    close_time INTEGER NOT NULL,
//	    PRIMARY KEY (instrument, open_time)
//	);
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens a read-only connection to the archive database.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000&mode=ro")
	if err != nil {
		return nil, fmt.Errorf("sqlite open source: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[sqlite-source] opened %s", dbPath)
	return &SQLiteSource{db: db}, nil
}

// Load reads one instrument's bars ordered by open time. The ORDER BY
// guarantees ascending order, so no separate validation pass is needed.
func (s *SQLiteSource) Load(ctx context.Context, id string) ([]model.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT open_time, open, high, close, volume, close_time
		FROM bars
		WHERE instrument = ?
		ORDER BY open_time ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.OpenTime, &b.Open, &b.High, &b.Close, &b.Volume, &b.CloseTime); err != nil {
			return nil, fmt.Errorf("sqlite scan bars: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite read bars: %w", err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return bars, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
