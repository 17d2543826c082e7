// Package store defines the persisted note shape and the key-value capability
// the lifecycle engine runs against, plus its sqlite, postgres and in-memory
// implementations. All operations are single-key; nothing here needs
// multi-key transactions.
package store

import (
	"context"
	"time"

	"github.com/yourname/go-ember/internal/analytics"
)

// Note is the stored secret plus its consumption policy. Contents and Meta
// are opaque to the server; Meta typically carries client-side encryption
// parameters. Exactly one of Views and Expiration is set while the note is
// live — the lifecycle layer enforces that on every write. Expiration is an
// absolute epoch-second timestamp once stored (callers submit minutes).
type Note struct {
	Contents   string  `json:"contents"`
	Meta       string  `json:"meta"`
	Views      *uint32 `json:"views"`
	Expiration *uint32 `json:"expiration"`
}

// Public is the consumption result: payload only, never remaining policy.
type Public struct {
	Contents string `json:"contents"`
	Meta     string `json:"meta"`
}

// Store is the capability the core consumes. Get methods report absence as
// (zero, false, nil); an error always means the engine itself failed. A
// nonzero ttl on Set arranges engine-side expiry as a backstop; the
// lifecycle layer still checks expiration itself and never trusts the TTL
// alone. Zero means no TTL.
type Store interface {
	GetNote(ctx context.Context, key string) (Note, bool, error)
	SetNote(ctx context.Context, key string, n Note, ttl time.Duration) error
	DeleteNote(ctx context.Context, key string) error

	GetAnalytics(ctx context.Context, key string) (analytics.Record, bool, error)
	SetAnalytics(ctx context.Context, key string, rec analytics.Record, ttl time.Duration) error

	// Ping reports whether the engine is reachable; readiness checks use it.
	Ping(ctx context.Context) error

	// PurgeExpired deletes rows whose TTL has lapsed and reports how many
	// went. Engines with native expiry may make this a no-op.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	Close() error
}
