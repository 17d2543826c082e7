package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/go-ember/internal/analytics"
)

func u32(v uint32) *uint32 { return &v }

func TestMemoryNoteRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	n := Note{Contents: "c", Meta: "m", Views: u32(3)}
	require.NoError(t, m.SetNote(ctx, "k", n, 0))

	got, ok, err := m.GetNote(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, n, got)

	require.NoError(t, m.DeleteNote(ctx, "k"))
	_, ok, err = m.GetNote(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryGetAbsentIsNotAnError(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.GetNote(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.GetAnalytics(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryNoteTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SetNote(ctx, "k", Note{Contents: "c", Views: u32(1)}, 10*time.Millisecond))

	_, ok, err := m.GetNote(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok, err = m.GetNote(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "lapsed entry must read as absent")
}

func TestMemoryPurgeExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SetNote(ctx, "ttl", Note{Views: u32(1)}, time.Millisecond))
	require.NoError(t, m.SetNote(ctx, "keep", Note{Views: u32(1)}, 0))
	require.NoError(t, m.SetAnalytics(ctx, "rec", analytics.NewRecord("rec", 1), time.Millisecond))

	time.Sleep(5 * time.Millisecond)
	n, err := m.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, err := m.GetNote(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryAnalyticsRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := analytics.NewRecord("id", 42)
	rec.AddEvent(analytics.Event{Timestamp: 43})
	require.NoError(t, m.SetAnalytics(ctx, "analytics:id", rec, time.Hour))

	got, ok, err := m.GetAnalytics(ctx, "analytics:id")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(1), got.TotalViews)
	assert.Equal(t, "id", got.NoteID)
}
