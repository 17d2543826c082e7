package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/yourname/go-ember/internal/analytics"
)

// SQLite persists notes and analytics in two tables. TTLs become an
// expires_at column: reads filter lapsed rows so a missed janitor sweep can
// never resurrect an expired note, and PurgeExpired reclaims the space.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) GetNote(ctx context.Context, key string) (Note, bool, error) {
	var n Note
	var views, expiration sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT contents, meta, views, expiration FROM notes
		 WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, time.Now().Unix(),
	).Scan(&n.Contents, &n.Meta, &views, &expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, err
	}
	if views.Valid {
		v := uint32(views.Int64)
		n.Views = &v
	}
	if expiration.Valid {
		e := uint32(expiration.Int64)
		n.Expiration = &e
	}
	return n, true, nil
}

func (s *SQLite) SetNote(ctx context.Context, key string, n Note, ttl time.Duration) error {
	var views, expiration, expiresAt sql.NullInt64
	if n.Views != nil {
		views = sql.NullInt64{Int64: int64(*n.Views), Valid: true}
	}
	if n.Expiration != nil {
		expiration = sql.NullInt64{Int64: int64(*n.Expiration), Valid: true}
	}
	if ttl != 0 {
		expiresAt = sql.NullInt64{Int64: time.Now().Add(ttl).Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes(key, contents, meta, views, expiration, expires_at)
		 VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   contents=excluded.contents, meta=excluded.meta, views=excluded.views,
		   expiration=excluded.expiration, expires_at=excluded.expires_at`,
		key, n.Contents, n.Meta, views, expiration, expiresAt)
	return err
}

func (s *SQLite) DeleteNote(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE key = ?`, key)
	return err
}

func (s *SQLite) GetAnalytics(ctx context.Context, key string) (analytics.Record, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM analytics WHERE key = ? AND expires_at > ?`,
		key, time.Now().Unix(),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.Record{}, false, nil
	}
	if err != nil {
		return analytics.Record{}, false, err
	}
	var rec analytics.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return analytics.Record{}, false, err
	}
	return rec, true, nil
}

func (s *SQLite) SetAnalytics(ctx context.Context, key string, rec analytics.Record, ttl time.Duration) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analytics(key, body, expires_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body=excluded.body, expires_at=excluded.expires_at`,
		key, body, time.Now().Add(ttl).Unix())
	return err
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}
	res, err = s.db.ExecContext(ctx,
		`DELETE FROM analytics WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return total, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}
	return total, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Migrate ensures schema exists
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			key TEXT PRIMARY KEY,
			contents TEXT NOT NULL,
			meta TEXT NOT NULL DEFAULT '',
			views INTEGER,
			expiration INTEGER,
			expires_at INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_expires_at ON notes(expires_at);`,
		`CREATE TABLE IF NOT EXISTS analytics (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_expires_at ON analytics(expires_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
