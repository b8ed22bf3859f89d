package session

import (
	"context"
	"log/slog"
	"time"

	"social-scheduler/internal/event"
)

type NotificationKind string

const (
	KindWarning     NotificationKind = "warning"
	KindCountdown   NotificationKind = "countdown"
	KindExtended    NotificationKind = "extended"
	KindExpired     NotificationKind = "expired"
	KindLoggedOut   NotificationKind = "logged_out"
	KindLogoutError NotificationKind = "logout_error"
)

type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Variant     string           `json:"variant,omitempty"`
	Remaining   string           `json:"remaining,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification)
}

func warningNotice(remaining time.Duration) Notification {
	return Notification{
		Kind:        KindWarning,
		Title:       "Session Expiring Soon",
		Description: "Your session will expire in 5 minutes. Click to extend.",
		Remaining:   FormatRemaining(remaining),
	}
}

func countdownNotice(remaining time.Duration) Notification {
	return Notification{
		Kind:      KindCountdown,
		Title:     "Session Expiring Soon",
		Remaining: FormatRemaining(remaining),
	}
}

var (
	extendedNotice = Notification{
		Kind:        KindExtended,
		Title:       "Session Extended",
		Description: "Your session has been extended for another 30 minutes.",
	}
	expiredNotice = Notification{
		Kind:        KindExpired,
		Title:       "Session Expired",
		Description: "You have been logged out due to inactivity.",
		Variant:     "destructive",
	}
	loggedOutNotice = Notification{
		Kind:        KindLoggedOut,
		Title:       "Successfully Logged Out",
		Description: "You have been safely logged out of your account.",
	}
	logoutErrorNotice = Notification{
		Kind:        KindLogoutError,
		Title:       "Logout Error",
		Description: "There was an error logging out. Please try again.",
		Variant:     "destructive",
	}
)

// EventNotifier forwards notifications to the user's realtime channel.
type EventNotifier struct {
	bus event.Bus
}

func NewEventNotifier(bus event.Bus) *EventNotifier {
	return &EventNotifier{bus: bus}
}

func (n *EventNotifier) Notify(_ context.Context, userID string, notice Notification) {
	n.bus.Publish(event.Event{
		Type:    event.Type("session." + string(notice.Kind)),
		Payload: notice,
		ActorID: userID,
	})
	if notice.Kind != KindCountdown {
		slog.Debug("session notification", "user_id", userID, "kind", notice.Kind)
	}
}
