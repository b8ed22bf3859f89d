// Package session tracks dashboard activity per user and signs idle users out.
//
// A Manager moves through three states. It starts active, enters warning
// once the idle time reaches IdleTimeout-WarningLead, and becomes expired at
// IdleTimeout or on logout. Expired is terminal. All time comes from a Clock
// so the transitions can be driven deterministically.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	IdleTimeout = 30 * time.Minute
	WarningLead = 5 * time.Minute
)

type State string

const (
	StateActive  State = "active"
	StateWarning State = "warning"
	StateExpired State = "expired"
)

type EndReason string

const (
	ReasonTimeout EndReason = "timeout"
	ReasonLogout  EndReason = "logout"
)

var ErrExpired = errors.New("session expired")

// SignOuter ends the session at the identity provider.
type SignOuter interface {
	SignOut(ctx context.Context, accessToken string) error
}

type Deps struct {
	Clock       Clock
	SignOuter   SignOuter
	Notifier    Notifier
	Preferences Preferences
}

type Status struct {
	UserID           string    `json:"user_id"`
	State            State     `json:"state"`
	Active           bool      `json:"is_active"`
	Remaining        int64     `json:"time_remaining_ms"`
	RemainingDisplay string    `json:"time_remaining"`
	WarningShown     bool      `json:"show_warning"`
	LastActivity     time.Time `json:"last_activity"`
	EndReason        EndReason `json:"end_reason,omitempty"`
}

type LogoutOptions struct {
	// Confirm is asked before anything happens. Nil skips confirmation.
	Confirm    func() bool
	RememberMe bool
}

type Manager struct {
	mu           sync.Mutex
	userID       string
	key          string
	token        string
	deps         Deps
	timeout      time.Duration
	warningLead  time.Duration
	lastActivity time.Time
	state        State
	reason       EndReason
	endedAt      time.Time
	signedOut    bool
	validUntil   time.Time
}

// effects are collected under the lock and run after it is released.
type effects struct {
	notices []Notification
	signOut bool
}

func NewManager(userID string, key string, token string, deps Deps) *Manager {
	if deps.Clock == nil {
		deps.Clock = NewRealClock()
	}
	if deps.Preferences == nil {
		deps.Preferences = NewMemoryPreferences()
	}

	return &Manager{
		userID:       userID,
		key:          key,
		token:        token,
		deps:         deps,
		timeout:      IdleTimeout,
		warningLead:  WarningLead,
		lastActivity: deps.Clock.Now(),
		state:        StateActive,
	}
}

// newEndedManager stands in for a swept session whose key is still tombstoned.
func newEndedManager(userID string, key string, token string, deps Deps, now time.Time) *Manager {
	m := NewManager(userID, key, token, deps)
	m.state = StateExpired
	m.reason = ReasonTimeout
	m.endedAt = now
	m.signedOut = true
	return m
}

func (m *Manager) UserID() string {
	return m.userID
}

// Activity resets the idle window. It reports false when the session already ended.
func (m *Manager) Activity(ctx context.Context, _ Signal) bool {
	m.mu.Lock()
	now := m.deps.Clock.Now()
	fx := m.evaluateLocked(now)
	alive := m.state != StateExpired
	if alive {
		m.lastActivity = now
		m.state = StateActive
	}
	m.mu.Unlock()

	m.apply(ctx, fx)
	return alive
}

// Tick evaluates the idle window against the clock. The registry calls it once a second.
func (m *Manager) Tick(ctx context.Context) Status {
	m.mu.Lock()
	now := m.deps.Clock.Now()
	fx := m.evaluateLocked(now)
	if len(fx.notices) == 0 && m.state == StateWarning {
		fx.notices = append(fx.notices, countdownNotice(m.remainingLocked(now)))
	}
	status := m.statusLocked(now)
	m.mu.Unlock()

	m.apply(ctx, fx)
	return status
}

// Extend re-arms the full window and clears any warning.
func (m *Manager) Extend(ctx context.Context) (Status, error) {
	m.mu.Lock()
	now := m.deps.Clock.Now()
	fx := m.evaluateLocked(now)
	if m.state == StateExpired {
		status := m.statusLocked(now)
		m.mu.Unlock()
		m.apply(ctx, fx)
		return status, ErrExpired
	}

	m.lastActivity = now
	m.state = StateActive
	fx.notices = append(fx.notices, extendedNotice)
	status := m.statusLocked(now)
	m.mu.Unlock()

	m.apply(ctx, fx)
	return status, nil
}

// Logout ends the session on request. It returns false when the user declined
// the confirmation or when the provider sign-out failed.
func (m *Manager) Logout(ctx context.Context, opts LogoutOptions) (bool, error) {
	if opts.Confirm != nil && !opts.Confirm() {
		return false, nil
	}

	m.mu.Lock()
	if m.state == StateExpired {
		m.mu.Unlock()
		return false, ErrExpired
	}
	m.state = StateExpired
	m.reason = ReasonLogout
	m.endedAt = m.deps.Clock.Now()
	m.signedOut = true
	m.mu.Unlock()

	_, remembered := m.deps.Preferences.Get(m.userID, PrefRememberMe)
	if !remembered && !opts.RememberMe {
		m.deps.Preferences.Delete(m.userID, PrefUserPreferences, PrefLastRoute)
	}

	if err := m.signOut(ctx); err != nil {
		m.notify(ctx, logoutErrorNotice)
		return false, fmt.Errorf("sign out: %w", err)
	}

	m.notify(ctx, loggedOutNotice)
	return true, nil
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(m.deps.Clock.Now())
}

func (m *Manager) evaluateLocked(now time.Time) effects {
	var fx effects
	if m.state == StateExpired {
		return fx
	}

	idle := now.Sub(m.lastActivity)
	switch {
	case idle >= m.timeout:
		m.state = StateExpired
		m.reason = ReasonTimeout
		m.endedAt = now
		if !m.signedOut {
			m.signedOut = true
			fx.signOut = true
		}
	case idle >= m.timeout-m.warningLead && m.state == StateActive:
		m.state = StateWarning
		fx.notices = append(fx.notices, warningNotice(m.remainingLocked(now)))
	}

	return fx
}

func (m *Manager) remainingLocked(now time.Time) time.Duration {
	if m.state == StateExpired {
		return 0
	}
	remaining := m.timeout - now.Sub(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Manager) statusLocked(now time.Time) Status {
	remaining := m.remainingLocked(now)
	return Status{
		UserID:           m.userID,
		State:            m.state,
		Active:           m.state != StateExpired,
		Remaining:        remaining.Milliseconds(),
		RemainingDisplay: FormatRemaining(remaining),
		WarningShown:     m.state == StateWarning,
		LastActivity:     m.lastActivity,
		EndReason:        m.reason,
	}
}

func (m *Manager) apply(ctx context.Context, fx effects) {
	for _, notice := range fx.notices {
		m.notify(ctx, notice)
	}

	if fx.signOut {
		// Timeout sign-out is attempted once; the session stays ended either way.
		if err := m.signOut(ctx); err != nil {
			slog.Warn("session sign-out failed", "user_id", m.userID, "error", err)
		}
		m.notify(ctx, expiredNotice)
	}
}

func (m *Manager) signOut(ctx context.Context) error {
	if m.deps.SignOuter == nil {
		return nil
	}
	return m.deps.SignOuter.SignOut(ctx, m.token)
}

func (m *Manager) notify(ctx context.Context, n Notification) {
	if m.deps.Notifier == nil {
		return
	}
	m.deps.Notifier.Notify(ctx, m.userID, n)
}

func (m *Manager) expiredFor(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateExpired {
		return 0
	}
	return now.Sub(m.endedAt)
}

// FormatRemaining renders a duration as m:ss.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
