package store

import (
	"context"
	"sync"
	"time"

	"github.com/yourname/go-ember/internal/analytics"
)

type memEntry struct {
	note      Note
	rec       analytics.Record
	expiresAt time.Time // zero means no TTL
}

// Memory is a map-backed Store for tests and single-process deployments
// where durability across restarts does not matter. Expiry is checked lazily
// on read and reclaimed by PurgeExpired.
type Memory struct {
	mu    sync.Mutex
	notes map[string]memEntry
	recs  map[string]memEntry
}

func NewMemory() *Memory {
	return &Memory{
		notes: make(map[string]memEntry),
		recs:  make(map[string]memEntry),
	}
}

func (m *Memory) GetNote(_ context.Context, key string) (Note, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.notes[key]
	if !ok || e.lapsed(time.Now()) {
		return Note{}, false, nil
	}
	return e.note, true, nil
}

func (m *Memory) SetNote(_ context.Context, key string, n Note, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{note: n}
	if ttl != 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.notes[key] = e
	return nil
}

func (m *Memory) DeleteNote(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notes, key)
	return nil
}

func (m *Memory) GetAnalytics(_ context.Context, key string) (analytics.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.recs[key]
	if !ok || e.lapsed(time.Now()) {
		return analytics.Record{}, false, nil
	}
	return e.rec, true, nil
}

func (m *Memory) SetAnalytics(_ context.Context, key string, rec analytics.Record, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{rec: rec}
	if ttl != 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.recs[key] = e
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for k, e := range m.notes {
		if e.lapsed(now) {
			delete(m.notes, k)
			total++
		}
	}
	for k, e := range m.recs {
		if e.lapsed(now) {
			delete(m.recs, k)
			total++
		}
	}
	return total, nil
}

func (m *Memory) Close() error {
	return nil
}

func (e memEntry) lapsed(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
