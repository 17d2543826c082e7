package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/yourname/go-ember/internal/core"
	"github.com/yourname/go-ember/internal/metrics"
	"github.com/yourname/go-ember/internal/store"
)

type createResponse struct {
	ID string `json:"id"`
}

func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !rt.limiter.Allow(clientIP(r)) {
		metrics.CreateRateLimited.Inc()
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var n store.Note
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id, err := rt.svc.Create(r.Context(), n)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, createResponse{ID: id}, http.StatusOK)
}

func (rt *Router) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := rt.svc.Preview(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (rt *Router) handleConsume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pub, tracked, err := rt.svc.Consume(r.Context(), id, r.UserAgent())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if !tracked {
		hlog.FromRequest(r).Warn().Str("id", id).Msg("view not recorded")
	}
	writeJSON(w, pub, http.StatusOK)
}

type extendRequest struct {
	Views      *uint32 `json:"views"`
	Expiration *uint32 `json:"expiration"`
}

func (rt *Router) handleExtend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req extendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	policy, err := rt.svc.Extend(r.Context(), id, req.Views, req.Expiration)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, policy, http.StatusOK)
}

func (rt *Router) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := rt.svc.TrackView(r.Context(), id, r.UserAgent()); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := rt.svc.Summary(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, summary, http.StatusOK)
}

type statusResponse struct {
	Version                string `json:"version"`
	MaxSize                int64  `json:"max_size"`
	MaxViews               uint32 `json:"max_views"`
	MaxExpiration          uint32 `json:"max_expiration"`
	AllowAdvanced          bool   `json:"allow_advanced"`
	AnalyticsRetentionDays int    `json:"analytics_retention_days"`
}

func (rt *Router) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{
		Version:                Version,
		MaxSize:                rt.cfg.BodyLimit,
		MaxViews:               rt.cfg.MaxViews,
		MaxExpiration:          rt.cfg.MaxExpiration,
		AllowAdvanced:          rt.cfg.AllowAdvanced,
		AnalyticsRetentionDays: core.RetentionDays,
	}, http.StatusOK)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (rt *Router) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := rt.svc.Ping(ctx); err != nil {
		http.Error(w, "store unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// writeError maps the core taxonomy onto status codes: caller errors 400,
// unknown ids 404, lapsed notes 410, anything else 500 with the detail kept
// in the log rather than the response.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Reason, http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		http.Error(w, "note not found", http.StatusNotFound)
	case errors.Is(err, core.ErrExpired):
		http.Error(w, "note expired", http.StatusGone)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	// Try X-Forwarded-For or Real-IP first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
