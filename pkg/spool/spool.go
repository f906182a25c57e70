// Package spool is the durable queue behind background delivery: pending
// notifications survive a restart so missed or future ones can be replayed.
package spool

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
	tag       TEXT PRIMARY KEY,
	item_id   TEXT NOT NULL,
	fire_at   INTEGER NOT NULL,
	payload   BLOB NOT NULL,
	delivered INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS deliveries_fire_at ON deliveries(fire_at);
`

// Delivery is one scheduled notification
type Delivery struct {
	Tag     string
	ItemID  string
	FireAt  time.Time
	Payload []byte
}

// Spool stores deliveries in SQLite
type Spool struct {
	db *sql.DB
}

// Open opens (or creates) the spool at path with WAL journaling
func Open(path string) (*Spool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate spool: %w", err)
	}
	return &Spool{db: db}, nil
}

// Close closes the database
func (s *Spool) Close() error {
	return s.db.Close()
}

// ReplacePrefix atomically drops every delivery whose tag starts with prefix
// and inserts ds
func (s *Spool) ReplacePrefix(ctx context.Context, prefix string, ds []Delivery) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM deliveries WHERE substr(tag, 1, length(?)) = ?`, prefix, prefix); err != nil {
		return fmt.Errorf("clear %q: %w", prefix, err)
	}

	if err := insertAll(ctx, tx, ds); err != nil {
		return err
	}
	return tx.Commit()
}

// Add inserts ds, replacing rows with the same tag
func (s *Spool) Add(ctx context.Context, ds ...Delivery) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertAll(ctx, tx, ds); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAll(ctx context.Context, tx *sql.Tx, ds []Delivery) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO deliveries (tag, item_id, fire_at, payload, delivered) VALUES (?, ?, ?, ?, 0)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range ds {
		if _, err := stmt.ExecContext(ctx, d.Tag, d.ItemID, d.FireAt.UnixMilli(), d.Payload); err != nil {
			return fmt.Errorf("insert %s: %w", d.Tag, err)
		}
	}
	return nil
}

// Pending returns undelivered deliveries ordered by fire time
func (s *Spool) Pending(ctx context.Context) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, item_id, fire_at, payload FROM deliveries WHERE delivered = 0 ORDER BY fire_at, tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var (
			d      Delivery
			millis int64
		)
		if err := rows.Scan(&d.Tag, &d.ItemID, &millis, &d.Payload); err != nil {
			return nil, err
		}
		d.FireAt = time.UnixMilli(millis)
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkDelivered flags a delivery as shown so it is not replayed
func (s *Spool) MarkDelivered(ctx context.Context, tag string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE deliveries SET delivered = 1 WHERE tag = ?`, tag)
	return err
}

// Remove deletes a delivery
func (s *Spool) Remove(ctx context.Context, tag string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE tag = ?`, tag)
	return err
}

// Purge deletes deliveries that fired before cutoff
func (s *Spool) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE fire_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
