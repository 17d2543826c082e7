package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/go-ember/internal/analytics"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every :memory: connection is a distinct database; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return NewSQLite(db)
}

func TestSQLiteNoteRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	n := Note{Contents: "payload", Meta: "meta", Views: u32(5)}
	require.NoError(t, s.SetNote(ctx, "k", n, 0))

	got, ok, err := s.GetNote(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", got.Contents)
	assert.Equal(t, "meta", got.Meta)
	require.NotNil(t, got.Views)
	assert.Equal(t, uint32(5), *got.Views)
	assert.Nil(t, got.Expiration)
}

func TestSQLiteSetNoteUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.SetNote(ctx, "k", Note{Contents: "a", Views: u32(3)}, 0))
	require.NoError(t, s.SetNote(ctx, "k", Note{Contents: "a", Views: u32(2)}, 0))

	got, ok, err := s.GetNote(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(2), *got.Views)
}

func TestSQLiteExpirationFieldRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	exp := uint32(time.Now().Add(time.Hour).Unix())
	require.NoError(t, s.SetNote(ctx, "k", Note{Contents: "c", Expiration: &exp}, time.Hour))

	got, ok, err := s.GetNote(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Views)
	require.NotNil(t, got.Expiration)
	assert.Equal(t, exp, *got.Expiration)
}

func TestSQLiteGetAbsent(t *testing.T) {
	s := newTestSQLite(t)
	_, ok, err := s.GetNote(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteDeleteNote(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.SetNote(ctx, "k", Note{Views: u32(1)}, 0))
	require.NoError(t, s.DeleteNote(ctx, "k"))

	_, ok, err := s.GetNote(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is a no-op, not an error.
	assert.NoError(t, s.DeleteNote(ctx, "k"))
}

func TestSQLiteTTLHidesLapsedRows(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	// An already-lapsed TTL: the row exists but reads must not see it.
	require.NoError(t, s.SetNote(ctx, "k", Note{Views: u32(1)}, -time.Second))

	_, ok, err := s.GetNote(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePurgeExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.SetNote(ctx, "gone", Note{Views: u32(1)}, -time.Second))
	require.NoError(t, s.SetNote(ctx, "keep", Note{Views: u32(1)}, 0))

	rec := analytics.NewRecord("gone", 1)
	require.NoError(t, s.SetAnalytics(ctx, "analytics:gone", rec, -time.Second))

	n, err := s.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, err := s.GetNote(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteAnalyticsRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	ua := "curl/8.0"
	device := analytics.DeviceUnknown
	rec := analytics.NewRecord("id", 42)
	rec.AddEvent(analytics.Event{Timestamp: 43, UserAgent: &ua, DeviceType: &device})

	require.NoError(t, s.SetAnalytics(ctx, "analytics:id", rec, time.Hour))

	got, ok, err := s.GetAnalytics(ctx, "analytics:id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "id", got.NoteID)
	assert.Equal(t, uint32(1), got.TotalViews)
	require.Len(t, got.Events, 1)
	assert.Equal(t, uint64(43), got.Events[0].Timestamp)
	require.NotNil(t, got.Events[0].UserAgent)
	assert.Equal(t, ua, *got.Events[0].UserAgent)
	assert.Nil(t, got.Events[0].Country)
}

func TestSQLitePing(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Ping(context.Background()))
}
