package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MaxTombstone bounds how long a swept session key stays ended when its
// token carries no usable expiry.
const MaxTombstone = 24 * time.Hour

// Registry holds one Manager per user and sweeps them on an interval.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*Manager
	tombstones map[tombstoneKey]time.Time
	deps       Deps
	retention  time.Duration
}

type tombstoneKey struct {
	userID string
	key    string
}

func NewRegistry(deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = NewRealClock()
	}
	if deps.Preferences == nil {
		deps.Preferences = NewMemoryPreferences()
	}

	return &Registry{
		sessions:   map[string]*Manager{},
		tombstones: map[tombstoneKey]time.Time{},
		deps:       deps,
		retention:  IdleTimeout,
	}
}

func (r *Registry) Preferences() Preferences {
	return r.deps.Preferences
}

// Open returns the user's session for the given identity session key.
// An ended session with the same key stays ended until validUntil, the
// token's expiry, even after the sweeper dropped it; a different key starts
// a fresh session.
func (r *Registry) Open(userID string, key string, token string, validUntil time.Time) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[userID]; ok && existing.key == key {
		if existing.token != token && existing.Status().Active {
			existing.mu.Lock()
			existing.token = token
			existing.validUntil = validUntil
			existing.mu.Unlock()
		}
		return existing
	}

	now := r.deps.Clock.Now()
	if until, ok := r.tombstones[tombstoneKey{userID: userID, key: key}]; ok && now.Before(until) {
		return newEndedManager(userID, key, token, r.deps, now)
	}

	created := NewManager(userID, key, token, r.deps)
	created.validUntil = validUntil
	r.sessions[userID] = created
	return created
}

func (r *Registry) Get(userID string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.sessions[userID]
	return m, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ticks every session and drops those that ended more than the retention ago.
func (r *Registry) Sweep(ctx context.Context) {
	r.mu.Lock()
	managers := make([]*Manager, 0, len(r.sessions))
	for _, m := range r.sessions {
		managers = append(managers, m)
	}
	r.mu.Unlock()

	now := r.deps.Clock.Now()
	stale := make([]*Manager, 0)
	for _, m := range managers {
		m.Tick(ctx)
		if m.expiredFor(now) > r.retention {
			stale = append(stale, m)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range stale {
		if current, ok := r.sessions[m.userID]; ok && current == m {
			delete(r.sessions, m.userID)
			r.tombstones[tombstoneKey{userID: m.userID, key: m.key}] = tombstoneUntil(m.validUntil, now)
		}
	}
	for k, until := range r.tombstones {
		if !now.Before(until) {
			delete(r.tombstones, k)
		}
	}
}

func tombstoneUntil(validUntil time.Time, now time.Time) time.Time {
	limit := now.Add(MaxTombstone)
	if validUntil.IsZero() || validUntil.After(limit) {
		return limit
	}
	return validUntil
}

// Run sweeps until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("session sweeper started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
