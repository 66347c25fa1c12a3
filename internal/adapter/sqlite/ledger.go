package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	observation_id    TEXT NOT NULL,
	name              TEXT NOT NULL,
	observed_on       TEXT NOT NULL,
	location          TEXT NOT NULL DEFAULT '',
	sunspot_count     INTEGER,
	page_id           TEXT NOT NULL DEFAULT '',
	page_url          TEXT NOT NULL DEFAULT '',
	original_attached INTEGER NOT NULL DEFAULT 0,
	result_attached   INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	error             TEXT NOT NULL DEFAULT '',
	recorded_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_recorded_at ON submissions(recorded_at);
`

// Ledger stores one row per submission in a local SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record appends an entry.
func (l *Ledger) Record(ctx context.Context, e domain.LedgerEntry) error {
	var count sql.NullInt64
	if e.SunspotCount != nil {
		count = sql.NullInt64{Int64: int64(*e.SunspotCount), Valid: true}
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO submissions (observation_id, name, observed_on, location, sunspot_count,
			page_id, page_url, original_attached, result_attached, status, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ObservationID, e.Name, e.ObservedOn, e.Location, count,
		e.PageID, e.PageURL, e.OriginalAttached, e.ResultAttached, e.Status, e.Error,
		e.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record submission %s: %w", e.ObservationID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT observation_id, name, observed_on, location, sunspot_count, page_id, page_url,
			original_attached, result_attached, status, error, recorded_at
		FROM submissions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e          domain.LedgerEntry
			count      sql.NullInt64
			recordedAt string
		)
		if err := rows.Scan(&e.ObservationID, &e.Name, &e.ObservedOn, &e.Location, &count,
			&e.PageID, &e.PageURL, &e.OriginalAttached, &e.ResultAttached, &e.Status, &e.Error,
			&recordedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if count.Valid {
			n := int(count.Int64)
			e.SunspotCount = &n
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ping checks the database is usable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
