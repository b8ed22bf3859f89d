package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSignOuter struct {
	mock.Mock
}

func (m *mockSignOuter) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, notice Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) kinds() []NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationKind, 0, len(n.notices))
	for _, notice := range n.notices {
		if notice.Kind == KindCountdown {
			continue
		}
		out = append(out, notice.Kind)
	}
	return out
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *StubClock, *mockSignOuter, *recordingNotifier) {
	t.Helper()

	clock := NewStubClock(epoch)
	signOuter := new(mockSignOuter)
	notifier := &recordingNotifier{}
	m := NewManager("user-1", "sess-1", "token-1", Deps{
		Clock:     clock,
		SignOuter: signOuter,
		Notifier:  notifier,
	})

	return m, clock, signOuter, notifier
}

func TestManager_ActivityKeepsSessionAlive(t *testing.T) {
	t.Parallel()

	m, clock, signOuter, _ := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		clock.Advance(20 * time.Minute)
		require.True(t, m.Activity(ctx, SignalMouseMove))
		status := m.Tick(ctx)
		assert.Equal(t, StateActive, status.State)
	}

	clock.Advance(24 * time.Minute)
	status := m.Tick(ctx)
	assert.Equal(t, StateActive, status.State)
	assert.True(t, status.Active)

	signOuter.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
}

func TestManager_WarningThenExpiry(t *testing.T) {
	t.Parallel()

	m, clock, signOuter, notifier := newTestManager(t)
	ctx := context.Background()
	signOuter.On("SignOut", mock.Anything, "token-1").Return(nil).Once()

	clock.Advance(24*time.Minute + 59*time.Second)
	assert.Equal(t, StateActive, m.Tick(ctx).State)

	clock.Advance(time.Second)
	status := m.Tick(ctx)
	assert.Equal(t, StateWarning, status.State)
	assert.True(t, status.WarningShown)
	assert.Equal(t, "5:00", status.RemainingDisplay)

	clock.Advance(4*time.Minute + 30*time.Second)
	assert.Equal(t, "0:30", m.Tick(ctx).RemainingDisplay)

	clock.Advance(30 * time.Second)
	status = m.Tick(ctx)
	assert.Equal(t, StateExpired, status.State)
	assert.Equal(t, ReasonTimeout, status.EndReason)
	assert.False(t, status.Active)

	clock.Advance(time.Minute)
	m.Tick(ctx)
	m.Tick(ctx)

	signOuter.AssertNumberOfCalls(t, "SignOut", 1)
	assert.Equal(t, []NotificationKind{KindWarning, KindExpired}, notifier.kinds())
}

func TestManager_SkippedTicksExpireDirectly(t *testing.T) {
	t.Parallel()

	m, clock, signOuter, notifier := newTestManager(t)
	ctx := context.Background()
	signOuter.On("SignOut", mock.Anything, "token-1").Return(nil).Once()

	clock.Advance(45 * time.Minute)
	status := m.Tick(ctx)

	assert.Equal(t, StateExpired, status.State)
	assert.Equal(t, []NotificationKind{KindExpired}, notifier.kinds())
	signOuter.AssertExpectations(t)
}

func TestManager_SignOutFailureStillEndsSession(t *testing.T) {
	t.Parallel()

	m, clock, signOuter, _ := newTestManager(t)
	ctx := context.Background()
	signOuter.On("SignOut", mock.Anything, "token-1").Return(errors.New("provider down")).Once()

	clock.Advance(IdleTimeout)
	assert.Equal(t, StateExpired, m.Tick(ctx).State)

	clock.Advance(time.Minute)
	m.Tick(ctx)
	signOuter.AssertNumberOfCalls(t, "SignOut", 1)
}

func TestManager_ActivityAfterExpiryDoesNotRevive(t *testing.T) {
	t.Parallel()

	m, clock, signOuter, _ := newTestManager(t)
	ctx := context.Background()
	signOuter.On("SignOut", mock.Anything, "token-1").Return(nil).Once()

	clock.Advance(31 * time.Minute)
	assert.False(t, m.Activity(ctx, SignalKeyPress))
	assert.Equal(t, StateExpired, m.Status().State)
	signOuter.AssertExpectations(t)
}

func TestManager_ExtendResetsWindow(t *testing.T) {
	t.Parallel()

	m, clock, _, notifier := newTestManager(t)
	ctx := context.Background()

	clock.Advance(27 * time.Minute)
	require.Equal(t, StateWarning, m.Tick(ctx).State)

	status, err := m.Extend(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
	assert.False(t, status.WarningShown)
	assert.Equal(t, IdleTimeout.Milliseconds(), status.Remaining)
	assert.Equal(t, "30:00", status.RemainingDisplay)
	assert.Equal(t, []NotificationKind{KindWarning, KindExtended}, notifier.kinds())
}

func TestManager_ExtendAfterExpiry(t *testing.T) {
	t.Parallel()

	m, clock, signOuter, _ := newTestManager(t)
	ctx := context.Background()
	signOuter.On("SignOut", mock.Anything, "token-1").Return(nil).Once()

	clock.Advance(IdleTimeout + time.Second)
	_, err := m.Extend(ctx)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_Logout(t *testing.T) {
	t.Parallel()

	t.Run("declined confirmation does nothing", func(t *testing.T) {
		t.Parallel()
		m, _, signOuter, notifier := newTestManager(t)

		ok, err := m.Logout(context.Background(), LogoutOptions{Confirm: func() bool { return false }})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, StateActive, m.Status().State)
		assert.Empty(t, notifier.kinds())
		signOuter.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
	})

	t.Run("clears preferences unless remembered", func(t *testing.T) {
		t.Parallel()
		m, _, signOuter, notifier := newTestManager(t)
		prefs := m.deps.Preferences
		prefs.Set("user-1", PrefUserPreferences, `{"theme":"dark"}`)
		prefs.Set("user-1", PrefLastRoute, "/calendar")
		signOuter.On("SignOut", mock.Anything, "token-1").Return(nil).Once()

		ok, err := m.Logout(context.Background(), LogoutOptions{Confirm: func() bool { return true }})
		require.NoError(t, err)
		assert.True(t, ok)

		_, found := prefs.Get("user-1", PrefUserPreferences)
		assert.False(t, found)
		_, found = prefs.Get("user-1", PrefLastRoute)
		assert.False(t, found)

		status := m.Status()
		assert.Equal(t, StateExpired, status.State)
		assert.Equal(t, ReasonLogout, status.EndReason)
		assert.Equal(t, []NotificationKind{KindLoggedOut}, notifier.kinds())
	})

	t.Run("remember me keeps preferences", func(t *testing.T) {
		t.Parallel()
		m, _, signOuter, _ := newTestManager(t)
		prefs := m.deps.Preferences
		prefs.Set("user-1", PrefRememberMe, "true")
		prefs.Set("user-1", PrefLastRoute, "/calendar")
		signOuter.On("SignOut", mock.Anything, "token-1").Return(nil).Once()

		ok, err := m.Logout(context.Background(), LogoutOptions{})
		require.NoError(t, err)
		assert.True(t, ok)

		route, found := prefs.Get("user-1", PrefLastRoute)
		assert.True(t, found)
		assert.Equal(t, "/calendar", route)
	})

	t.Run("sign out failure reports logout error", func(t *testing.T) {
		t.Parallel()
		m, clock, signOuter, notifier := newTestManager(t)
		signOuter.On("SignOut", mock.Anything, "token-1").Return(errors.New("boom")).Once()

		ok, err := m.Logout(context.Background(), LogoutOptions{})
		require.Error(t, err)
		assert.False(t, ok)
		assert.Equal(t, []NotificationKind{KindLogoutError}, notifier.kinds())

		clock.Advance(IdleTimeout * 2)
		m.Tick(context.Background())
		signOuter.AssertNumberOfCalls(t, "SignOut", 1)
	})
}

func TestFormatRemaining(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "30:00", FormatRemaining(IdleTimeout))
	assert.Equal(t, "4:05", FormatRemaining(4*time.Minute+5*time.Second+900*time.Millisecond))
	assert.Equal(t, "0:00", FormatRemaining(-time.Second))
}

func TestParseSignal(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"mousedown", "mousemove", "keypress", "scroll", "touchstart"} {
		_, ok := ParseSignal(raw)
		assert.True(t, ok, raw)
	}
	_, ok := ParseSignal("resize")
	assert.False(t, ok)
}
