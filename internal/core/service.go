// Package core implements the note lifecycle: creation validation, locked
// exactly-once consumption, policy extension, and the per-note analytics log.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yourname/go-ember/internal/analytics"
	"github.com/yourname/go-ember/internal/keylock"
	"github.com/yourname/go-ember/internal/metrics"
	"github.com/yourname/go-ember/internal/noteid"
	"github.com/yourname/go-ember/internal/store"
)

// RetentionDays is how long analytics records outlive their last write; a
// record can outlive its note.
const RetentionDays = 30

const analyticsTTL = RetentionDays * 24 * time.Hour

const analyticsPrefix = "analytics:"

// Limits are the deployment's policy bounds. MaxExpiration is in minutes.
// With AllowAdvanced off, every note is forced to a single view regardless
// of what the caller asked for.
type Limits struct {
	MaxViews      uint32
	MaxExpiration uint32
	AllowAdvanced bool
}

// Policy is a note's current consumption policy, as returned by Extend.
type Policy struct {
	Views      *uint32 `json:"views"`
	Expiration *uint32 `json:"expiration"`
}

// Preview exposes policy state without consuming. The complement of Consume,
// which exposes payload but never policy.
type Preview struct {
	Meta       string  `json:"meta"`
	Views      *uint32 `json:"views"`
	Expiration *uint32 `json:"expiration"`
}

type Service struct {
	store store.Store
	locks *keylock.Registry
	lim   Limits
	now   func() time.Time
}

func NewService(s store.Store, lim Limits) *Service {
	return &Service{
		store: s,
		locks: keylock.New(),
		lim:   lim,
		now:   time.Now,
	}
}

// Create validates the policy, normalizes expiration minutes into an absolute
// epoch-second timestamp, and persists the note under a fresh identifier.
// No lock is taken: the id is newly minted and not yet visible to anyone.
func (s *Service) Create(ctx context.Context, n store.Note) (string, error) {
	if n.Views == nil && n.Expiration == nil {
		return "", validation("at least views or expiration must be set")
	}
	if !s.lim.AllowAdvanced {
		one := uint32(1)
		n.Views = &one
		n.Expiration = nil
	}
	if n.Views != nil {
		if *n.Views < 1 || *n.Views > s.lim.MaxViews {
			return "", validation("invalid views")
		}
		n.Expiration = nil // views overrides expiration
	}
	var ttl time.Duration
	if n.Expiration != nil {
		minutes := *n.Expiration
		if minutes < 1 || minutes > s.lim.MaxExpiration {
			return "", validation("invalid expiration")
		}
		abs := uint32(s.now().Unix()) + minutes*60
		n.Expiration = &abs
		// Engine-side TTL as a backstop; Consume still checks the timestamp.
		ttl = time.Duration(minutes) * time.Minute
	}

	id := noteid.New()
	if err := s.store.SetNote(ctx, id, n, ttl); err != nil {
		return "", fmt.Errorf("store note: %w", err)
	}
	metrics.NotesCreated.Inc()
	return id, nil
}

// Consume reads a note destructively. The whole operation holds the id's
// lock, which is what makes a v-view note worth exactly v reads no matter
// how many callers race. The second return value reports whether the
// best-effort analytics append landed; it never affects the result.
func (s *Service) Consume(ctx context.Context, id, userAgent string) (store.Public, bool, error) {
	release := s.locks.Acquire(id)
	defer release()

	n, ok, err := s.store.GetNote(ctx, id)
	if err != nil {
		return store.Public{}, false, fmt.Errorf("get note: %w", err)
	}
	if !ok {
		return store.Public{}, false, ErrNotFound
	}
	if n.Views == nil && n.Expiration == nil {
		// A stored note always carries a policy; treat a record without one
		// as corrupted rather than guessing.
		return store.Public{}, false, validation("note has no consumption policy")
	}

	if n.Views != nil {
		if *n.Views <= 1 {
			if err := s.store.DeleteNote(ctx, id); err != nil {
				// Not durably applied: no analytics event for this attempt.
				return store.Public{}, false, fmt.Errorf("delete note: %w", err)
			}
		} else {
			left := *n.Views - 1
			upd := n
			upd.Views = &left
			if err := s.store.SetNote(ctx, id, upd, 0); err != nil {
				return store.Public{}, false, fmt.Errorf("store note: %w", err)
			}
		}
	}

	if n.Expiration != nil && *n.Expiration < uint32(s.now().Unix()) {
		// Lazy expiration: the store's TTL is only a backstop.
		if err := s.store.DeleteNote(ctx, id); err != nil {
			return store.Public{}, false, fmt.Errorf("delete note: %w", err)
		}
		metrics.NotesExpired.Inc()
		return store.Public{}, false, ErrExpired
	}

	tracked := true
	if err := s.appendEvent(ctx, id, userAgent); err != nil {
		tracked = false
		metrics.AnalyticsDropped.Inc()
		log.Warn().Err(err).Str("id", id).Msg("analytics append")
	}

	metrics.NotesConsumed.Inc()
	return store.Public{Contents: n.Contents, Meta: n.Meta}, tracked, nil
}

// Preview returns policy state without consuming, locking, or logging. It
// tolerates racing a concurrent Consume and may show slightly stale fields.
func (s *Service) Preview(ctx context.Context, id string) (Preview, error) {
	n, ok, err := s.store.GetNote(ctx, id)
	if err != nil {
		return Preview{}, fmt.Errorf("get note: %w", err)
	}
	if !ok {
		return Preview{}, ErrNotFound
	}
	return Preview{Meta: n.Meta, Views: n.Views, Expiration: n.Expiration}, nil
}

// Extend tops up a note's policy. Views are applied before minutes, so a call
// carrying both ends up expiration-limited with views cleared.
//
// Extend does not take the per-id lock. A concurrent Consume may interleave,
// yielding a state consistent with some ordering of the two but not
// necessarily submission order. Known limitation, kept from the original
// design.
func (s *Service) Extend(ctx context.Context, id string, views, minutes *uint32) (Policy, error) {
	n, ok, err := s.store.GetNote(ctx, id)
	if err != nil {
		return Policy{}, fmt.Errorf("get note: %w", err)
	}
	if !ok {
		return Policy{}, ErrNotFound
	}
	if views == nil && minutes == nil {
		return Policy{}, validation("at least views or expiration must be provided")
	}

	if views != nil {
		if *views < 1 || *views > s.lim.MaxViews {
			return Policy{}, validation("invalid views count")
		}
		var current uint32
		if n.Views != nil {
			current = *n.Views
		}
		total := uint64(current) + uint64(*views)
		if total > uint64(s.lim.MaxViews) {
			return Policy{}, validation("total views exceed maximum")
		}
		t := uint32(total)
		n.Views = &t
		n.Expiration = nil
	}

	var ttl time.Duration
	if minutes != nil {
		if *minutes < 1 || *minutes > s.lim.MaxExpiration {
			return Policy{}, validation("invalid expiration time")
		}
		abs := uint32(s.now().Unix()) + *minutes*60
		n.Expiration = &abs
		n.Views = nil
		ttl = time.Duration(*minutes) * time.Minute
	}

	if err := s.store.SetNote(ctx, id, n, ttl); err != nil {
		return Policy{}, fmt.Errorf("store note: %w", err)
	}
	return Policy{Views: n.Views, Expiration: n.Expiration}, nil
}

// TrackView records one access event without consuming the note. Unlike the
// append inside Consume this one is authoritative: a store failure surfaces.
func (s *Service) TrackView(ctx context.Context, id, userAgent string) error {
	return s.appendEvent(ctx, id, userAgent)
}

// Summary derives the statistics projection. An absent record yields the
// zero summary, not an error.
func (s *Service) Summary(ctx context.Context, id string) (analytics.Summary, error) {
	rec, ok, err := s.store.GetAnalytics(ctx, analyticsPrefix+id)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("get analytics: %w", err)
	}
	if !ok {
		return analytics.EmptySummary(), nil
	}
	return rec.Summarize(), nil
}

// Ping reports store reachability for readiness checks.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// RunJanitor periodically reclaims rows whose TTL has lapsed. Blocks until
// ctx is done.
func (s *Service) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			n, err := s.store.PurgeExpired(ctx, s.now())
			if err != nil {
				log.Error().Err(err).Msg("janitor sweep")
				continue
			}
			if n > 0 {
				metrics.JanitorPurged.Add(float64(n))
				log.Debug().Int64("rows", n).Msg("janitor sweep")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) appendEvent(ctx context.Context, id, userAgent string) error {
	now := uint64(s.now().Unix())

	ev := analytics.Event{Timestamp: now}
	device := analytics.DeviceUnknown
	if userAgent != "" {
		ua := userAgent
		ev.UserAgent = &ua
		device = analytics.DetectDevice(ua)
	}
	ev.DeviceType = &device
	// Country stays nil: it is a pass-through for geo-aware collaborators,
	// never computed here.

	key := analyticsPrefix + id
	rec, ok, err := s.store.GetAnalytics(ctx, key)
	if err != nil || !ok {
		rec = analytics.NewRecord(id, now)
	}
	rec.AddEvent(ev)

	if err := s.store.SetAnalytics(ctx, key, rec, analyticsTTL); err != nil {
		return fmt.Errorf("store analytics: %w", err)
	}
	metrics.AnalyticsEvents.Inc()
	return nil
}
