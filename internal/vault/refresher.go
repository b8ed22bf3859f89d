package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/linkedin"

	"social-scheduler/internal/event"
)

type Credentials struct {
	ClientID     string
	ClientSecret string
}

var twitterEndpoint = oauth2.Endpoint{
	AuthURL:   "https://twitter.com/i/oauth2/authorize",
	TokenURL:  "https://api.twitter.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// PlatformConfigs builds refresh configs for every platform with credentials.
// Instagram business accounts are issued through the Facebook Graph login.
func PlatformConfigs(creds map[string]Credentials) map[string]*oauth2.Config {
	endpoints := map[string]oauth2.Endpoint{
		"facebook":  facebook.Endpoint,
		"instagram": facebook.Endpoint,
		"linkedin":  linkedin.Endpoint,
		"twitter":   twitterEndpoint,
	}

	out := map[string]*oauth2.Config{}
	for platform, c := range creds {
		endpoint, ok := endpoints[strings.ToLower(platform)]
		if !ok || c.ClientID == "" || c.ClientSecret == "" {
			continue
		}
		out[strings.ToLower(platform)] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     endpoint,
		}
	}
	return out
}

// Refresher renews access tokens that are about to expire.
type Refresher struct {
	store   SecretStore
	configs map[string]*oauth2.Config
	window  time.Duration
	bus     event.Bus
	now     func() time.Time

	pageSize int
}

func NewRefresher(store SecretStore, configs map[string]*oauth2.Config, window time.Duration, bus event.Bus) *Refresher {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Refresher{store: store, configs: configs, window: window, bus: bus, now: time.Now, pageSize: defaultExpiringLimit}
}

// RefreshDue refreshes every secret expiring within the window and reports how
// many succeeded. It pages through the whole due set, so rows that fail to
// refresh never hide the ones behind them.
func (r *Refresher) RefreshDue(ctx context.Context) (int, error) {
	if len(r.configs) == 0 {
		return 0, nil
	}

	q := ExpiringQuery{
		Cutoff:    r.now().Add(r.window),
		Platforms: r.platforms(),
		Limit:     r.pageSize,
	}

	// A token renewed with a lifetime shorter than the window moves further
	// along the keyset order; seen stops it being renewed twice in one pass.
	seen := map[string]struct{}{}
	refreshed := 0
	for {
		page, err := r.store.Expiring(ctx, q)
		if err != nil {
			return refreshed, err
		}

		for _, entry := range page.Entries {
			if _, dup := seen[entry.Ref]; dup {
				continue
			}
			seen[entry.Ref] = struct{}{}

			ok, err := r.refresh(ctx, entry)
			if err != nil {
				return refreshed, err
			}
			if ok {
				refreshed++
			}
		}

		if !page.More || page.Next.IsZero() {
			return refreshed, nil
		}
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		q.After = page.Next
	}
}

func (r *Refresher) platforms() []string {
	out := make([]string, 0, len(r.configs))
	for platform := range r.configs {
		out = append(out, platform)
	}
	sort.Strings(out)
	return out
}

// refresh renews one secret. A failed exchange is logged and reported as not
// refreshed; only a failed write is returned as an error.
func (r *Refresher) refresh(ctx context.Context, entry Entry) (bool, error) {
	cfg, ok := r.configs[entry.Tokens.Platform]
	if !ok {
		return false, nil
	}

	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: entry.Tokens.RefreshToken}).Token()
	if err != nil {
		slog.Warn("token refresh failed", "platform", entry.Tokens.Platform, "user_id", entry.Tokens.UserID, "error", err)
		return false, nil
	}

	updated := entry.Tokens
	updated.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		updated.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		updated.ExpiresAt = &expiry
	} else {
		updated.ExpiresAt = nil
	}

	if err := r.store.Put(ctx, entry.Ref, updated); err != nil {
		return false, fmt.Errorf("store refreshed token: %w", err)
	}

	if r.bus != nil {
		r.bus.Publish(event.Event{
			Type:    event.TypeAccountRefreshed,
			ActorID: updated.UserID,
			Payload: map[string]string{"platform": updated.Platform},
		})
	}
	return true, nil
}

func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.RefreshDue(ctx)
			if err != nil {
				slog.Error("token refresh pass failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("tokens refreshed", "count", n)
			}
		}
	}
}
