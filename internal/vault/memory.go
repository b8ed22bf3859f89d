package vault

import (
	"context"
	"slices"
	"sort"
	"sync"

	"social-scheduler/internal/model"
)

// MemoryStore is a process-local SecretStore for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]model.StoredTokens
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: map[string]model.StoredTokens{}}
}

func (s *MemoryStore) Put(_ context.Context, ref string, tokens model.StoredTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[ref] = tokens
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) (model.StoredTokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens, ok := s.secrets[ref]
	if !ok {
		return model.StoredTokens{}, model.ErrSecretNotFound
	}
	return tokens, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, ref)
	return nil
}

func (s *MemoryStore) Expiring(_ context.Context, q ExpiringQuery) (ExpiringPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultExpiringLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0)
	for ref, tokens := range s.secrets {
		if tokens.RefreshToken == "" || tokens.ExpiresAt == nil || !tokens.ExpiresAt.Before(q.Cutoff) {
			continue
		}
		if len(q.Platforms) > 0 && !slices.Contains(q.Platforms, tokens.Platform) {
			continue
		}
		if !q.After.before(*tokens.ExpiresAt, ref) {
			continue
		}
		out = append(out, Entry{Ref: ref, Tokens: tokens})
	}

	sort.Slice(out, func(i, j int) bool {
		ei, ej := *out[i].Tokens.ExpiresAt, *out[j].Tokens.ExpiresAt
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return out[i].Ref < out[j].Ref
	})

	page := ExpiringPage{Entries: out}
	if len(out) > limit {
		page.Entries = out[:limit]
	}
	page.More = len(out) >= limit
	if n := len(page.Entries); n > 0 {
		last := page.Entries[n-1]
		page.Next = Cursor{ExpiresAt: *last.Tokens.ExpiresAt, Ref: last.Ref}
	}
	return page, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
