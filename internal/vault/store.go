package vault

import (
	"context"
	"time"

	"social-scheduler/internal/model"
)

type SecretStore interface {
	Put(ctx context.Context, ref string, tokens model.StoredTokens) error
	Get(ctx context.Context, ref string) (model.StoredTokens, error)
	Delete(ctx context.Context, ref string) error
	// Expiring lists one page of refreshable secrets expiring before q.Cutoff,
	// ordered by expiry then ref and starting after q.After.
	Expiring(ctx context.Context, q ExpiringQuery) (ExpiringPage, error)
}

type Entry struct {
	Ref    string
	Tokens model.StoredTokens
}

// Cursor is a keyset position in (expires_at, ref) order. The zero value is the start.
type Cursor struct {
	ExpiresAt time.Time
	Ref       string
}

func (c Cursor) IsZero() bool {
	return c.Ref == "" && c.ExpiresAt.IsZero()
}

func (c Cursor) before(expiresAt time.Time, ref string) bool {
	if c.IsZero() {
		return true
	}
	if !c.ExpiresAt.Equal(expiresAt) {
		return c.ExpiresAt.Before(expiresAt)
	}
	return c.Ref < ref
}

type ExpiringQuery struct {
	Cutoff time.Time
	// Platforms restricts the page to these platforms. Empty means all.
	Platforms []string
	After     Cursor
	Limit     int
}

type ExpiringPage struct {
	Entries []Entry
	// Next is the position of the last row read, unreadable rows included.
	Next Cursor
	// More reports that a full page was read and rows may remain.
	More bool
}

const defaultExpiringLimit = 50
