package session

import "sync"

// Client preference keys cleared on logout unless the user chose to be remembered.
const (
	PrefRememberMe      = "rememberMe"
	PrefUserPreferences = "userPreferences"
	PrefLastRoute       = "lastRoute"
)

type Preferences interface {
	Get(userID string, key string) (string, bool)
	Set(userID string, key string, value string)
	Delete(userID string, keys ...string)
	All(userID string) map[string]string
}

type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: map[string]map[string]string{}}
}

func (p *MemoryPreferences) Get(userID string, key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[userID][key]
	return v, ok
}

func (p *MemoryPreferences) Set(userID string, key string, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values[userID] == nil {
		p.values[userID] = map[string]string{}
	}
	p.values[userID][key] = value
}

func (p *MemoryPreferences) Delete(userID string, keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, key := range keys {
		delete(p.values[userID], key)
	}
}

func (p *MemoryPreferences) All(userID string) map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.values[userID]))
	for k, v := range p.values[userID] {
		out[k] = v
	}
	return out
}
