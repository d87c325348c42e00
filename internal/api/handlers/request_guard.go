package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

// requestGuard rate limits and de-duplicates public form submissions. It uses
// the shared cache when one is configured and per-process maps otherwise.
type requestGuard struct {
	cache       providers.CacheProvider
	limit       int
	window      time.Duration
	dedupWindow time.Duration
	local       *localRateLimiter
	deduper     *localDeduper
}

func newRequestGuard(cache providers.CacheProvider, limit int, window, dedupWindow time.Duration) *requestGuard {
	return &requestGuard{
		cache:       cache,
		limit:       limit,
		window:      window,
		dedupWindow: dedupWindow,
		local:       newLocalRateLimiter(),
		deduper:     newLocalDeduper(),
	}
}

func (g *requestGuard) allow(ctx context.Context, key string) (bool, time.Duration) {
	if g.cache == nil {
		return g.local.allow(key, g.limit, g.window)
	}

	count, err := g.cache.Increment(ctx, key, int(g.window.Seconds()))
	if err != nil {
		// Fail open: a cache outage must not block bookings or logins.
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Rate limit counter unavailable")
		return g.local.allow(key, g.limit, g.window)
	}
	if count > int64(g.limit) {
		return false, g.window
	}
	return true, g.window
}

func (g *requestGuard) isDuplicate(ctx context.Context, key string) bool {
	if g.cache == nil {
		return g.deduper.seen(key, g.dedupWindow)
	}

	stored, err := g.cache.SetNX(ctx, key, []byte("1"), int(g.dedupWindow.Seconds()))
	if err != nil {
		return g.deduper.seen(key, g.dedupWindow)
	}
	return !stored
}

// forget releases a dedup key so a rejected submission can be corrected and resent
func (g *requestGuard) forget(ctx context.Context, key string) {
	if g.cache == nil {
		g.deduper.forget(key)
		return
	}
	_ = g.cache.Delete(ctx, key)
}

// localSweepInterval bounds how often the per-process maps drop expired keys.
const localSweepInterval = time.Minute

type localRateLimiter struct {
	mu         sync.Mutex
	states     map[string]*localRateState
	sweepEvery time.Duration
	lastSweep  time.Time
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states:     make(map[string]*localRateState),
		sweepEvery: localSweepInterval,
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

// sweep must be called with l.mu held.
func (l *localRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.sweepEvery {
		return
	}
	l.lastSweep = now
	for key, state := range l.states {
		if now.After(state.resetAt) {
			delete(l.states, key)
		}
	}
}

type localDeduper struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	sweepEvery time.Duration
	lastSweep  time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries:    make(map[string]time.Time),
		sweepEvery: localSweepInterval,
	}
}

func (d *localDeduper) seen(key string, window time.Duration) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastSweep) >= d.sweepEvery {
		d.lastSweep = now
		for k, expiresAt := range d.entries {
			if !now.Before(expiresAt) {
				delete(d.entries, k)
			}
		}
	}

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(window)
	return false
}

func (d *localDeduper) forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}
