package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourname/go-ember/internal/analytics"
)

// Postgres is the Store for multi-instance deployments. Same two-table shape
// as the sqlite backend, shared through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			key TEXT PRIMARY KEY,
			contents TEXT NOT NULL,
			meta TEXT NOT NULL DEFAULT '',
			views BIGINT,
			expiration BIGINT,
			expires_at BIGINT,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_expires_at ON notes(expires_at)`,
		`CREATE TABLE IF NOT EXISTS analytics (
			key TEXT PRIMARY KEY,
			body JSONB NOT NULL,
			expires_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_expires_at ON analytics(expires_at)`,
	}
	for _, s := range stmts {
		if _, err := p.pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetNote(ctx context.Context, key string) (Note, bool, error) {
	var n Note
	var views, expiration *int64
	err := p.pool.QueryRow(ctx,
		`SELECT contents, meta, views, expiration FROM notes
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		key, time.Now().Unix(),
	).Scan(&n.Contents, &n.Meta, &views, &expiration)
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, err
	}
	if views != nil {
		v := uint32(*views)
		n.Views = &v
	}
	if expiration != nil {
		e := uint32(*expiration)
		n.Expiration = &e
	}
	return n, true, nil
}

func (p *Postgres) SetNote(ctx context.Context, key string, n Note, ttl time.Duration) error {
	var views, expiration, expiresAt *int64
	if n.Views != nil {
		v := int64(*n.Views)
		views = &v
	}
	if n.Expiration != nil {
		e := int64(*n.Expiration)
		expiration = &e
	}
	if ttl != 0 {
		t := time.Now().Add(ttl).Unix()
		expiresAt = &t
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO notes(key, contents, meta, views, expiration, expires_at)
		 VALUES($1, $2, $3, $4, $5, $6)
		 ON CONFLICT(key) DO UPDATE SET
		   contents=excluded.contents, meta=excluded.meta, views=excluded.views,
		   expiration=excluded.expiration, expires_at=excluded.expires_at`,
		key, n.Contents, n.Meta, views, expiration, expiresAt)
	return err
}

func (p *Postgres) DeleteNote(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM notes WHERE key = $1`, key)
	return err
}

func (p *Postgres) GetAnalytics(ctx context.Context, key string) (analytics.Record, bool, error) {
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM analytics WHERE key = $1 AND expires_at > $2`,
		key, time.Now().Unix(),
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) SetAnalytics(ctx context.Context, key string, rec analytics.Record, ttl time.Duration) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO analytics(key, body, expires_at) VALUES($1, $2, $3)
		 ON CONFLICT(key) DO UPDATE SET body=excluded.body, expires_at=excluded.expires_at`,
		key, body, time.Now().Add(ttl).Unix())
	return err
}

func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	return p.pool.QueryRow(ctx, `select 1`).Scan(&one)
}

func (p *Postgres) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM notes WHERE expires_at IS NOT NULL AND expires_at <= $1`, now.Unix())
	if err != nil {
		return 0, err
	}
	total += tag.RowsAffected()
	tag, err = p.pool.Exec(ctx,
		`DELETE FROM analytics WHERE expires_at <= $1`, now.Unix())
	if err != nil {
		return total, err
	}
	total += tag.RowsAffected()
	return total, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
