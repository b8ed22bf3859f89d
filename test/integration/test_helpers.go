//go:build integration

package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"social-scheduler/internal/config"
	"social-scheduler/internal/content"
	"social-scheduler/internal/event"
	"social-scheduler/internal/handler"
	"social-scheduler/internal/identity"
	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
	"social-scheduler/internal/router"
	"social-scheduler/internal/service"
	"social-scheduler/internal/session"
	"social-scheduler/internal/vault"
	"social-scheduler/internal/websocket"
)

const (
	testSecret   = "integration-secret"
	testAudience = "authenticated"
)

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
}

func (m *memProfiles) Get(_ context.Context, userID string) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return model.Profile{}, model.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfiles) ReserveGeneration(_ context.Context, userID string, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID]
	if limit != content.Unlimited && p.PostsUsedThisMonth >= limit {
		return 0, model.ErrQuotaExceeded
	}
	p.PostsUsedThisMonth++
	m.profiles[userID] = p
	return p.PostsUsedThisMonth, nil
}

func (m *memProfiles) ReleaseGeneration(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID]
	if p.PostsUsedThisMonth > 0 {
		p.PostsUsedThisMonth--
	}
	m.profiles[userID] = p
	return nil
}

type memGenerations struct {
	mu   sync.Mutex
	rows []model.Generation
}

func (m *memGenerations) Create(_ context.Context, g model.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	m.rows = append([]model.Generation{g}, m.rows...)
	return nil
}

func (m *memGenerations) ListRecent(_ context.Context, userID string, limit int) ([]model.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Generation, 0)
	for _, g := range m.rows {
		if g.UserID == userID && len(out) < limit {
			out = append(out, g)
		}
	}
	return out, nil
}

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]model.SocialAccount
}

func (m *memAccounts) Upsert(_ context.Context, account model.SocialAccount) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := account.UserID + "/" + account.Platform
	var previous *string
	if existing, ok := m.accounts[key]; ok {
		previous = existing.TokenReferenceID
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	} else {
		account.ID = uuid.NewString()
		account.CreatedAt = time.Now().UTC()
	}
	account.UpdatedAt = time.Now().UTC()
	m.accounts[key] = account
	return previous, nil
}

func (m *memAccounts) GetByPlatform(_ context.Context, userID string, platform string) (model.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID+"/"+platform]
	if !ok {
		return model.SocialAccount{}, model.ErrAccountNotFound
	}
	return a, nil
}

func (m *memAccounts) ListByUser(_ context.Context, userID string) ([]model.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SocialAccount, 0)
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func (m *memAccounts) Disconnect(_ context.Context, userID string, platform string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "/" + platform
	a, ok := m.accounts[key]
	if !ok {
		return model.ErrAccountNotFound
	}
	a.IsConnected = false
	a.TokenReferenceID = nil
	m.accounts[key] = a
	return nil
}

type memPosts struct {
	mu    sync.Mutex
	posts map[string]model.Post
}

func (m *memPosts) Create(_ context.Context, post model.Post) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	m.posts[post.ID] = post
	return post, nil
}

func (m *memPosts) Get(_ context.Context, userID string, postID string) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok || p.UserID != userID {
		return model.Post{}, model.ErrPostNotFound
	}
	return p, nil
}

func (m *memPosts) List(_ context.Context, userID string, filter model.PostFilter) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Post, 0)
	for _, p := range m.posts {
		if p.UserID != userID {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if filter.Platform != "" && p.Platform != filter.Platform {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Content), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memPosts) ListScheduledBetween(_ context.Context, userID string, from time.Time, to time.Time) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Post, 0)
	for _, p := range m.posts {
		if p.UserID != userID || p.ScheduledTime == nil {
			continue
		}
		if !p.ScheduledTime.Before(from) && p.ScheduledTime.Before(to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(*out[j].ScheduledTime) })
	return out, nil
}

func (m *memPosts) SetStatus(_ context.Context, userID string, postID string, status model.PostStatus, scheduledTime *time.Time) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok || p.UserID != userID {
		return model.Post{}, model.ErrPostNotFound
	}
	if p.Status == model.PostPublished {
		return model.Post{}, model.ErrInvalidTransition
	}
	p.Status = status
	if scheduledTime != nil {
		p.ScheduledTime = scheduledTime
	}
	p.UpdatedAt = time.Now().UTC()
	m.posts[postID] = p
	return p, nil
}

func (m *memPosts) ClaimDue(_ context.Context, now time.Time, limit int) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Post, 0)
	for id, p := range m.posts {
		if len(out) == limit {
			break
		}
		if p.Status == model.PostScheduled && p.ScheduledTime != nil && !p.ScheduledTime.After(now) {
			p.Status = model.PostPublished
			m.posts[id] = p
			out = append(out, p)
		}
	}
	return out, nil
}

type memAnalytics struct{}

func (memAnalytics) Daily(context.Context, string, time.Time, time.Time) ([]model.DailyPoint, error) {
	return []model.DailyPoint{}, nil
}

type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []content.Prompt
}

func (g *stubGenerator) Generate(_ context.Context, prompt content.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return "Big launch today", nil
}

type testServer struct {
	*httptest.Server
	profiles  *memProfiles
	accounts  *memAccounts
	secrets   *vault.MemoryStore
	generator *stubGenerator
}

func newTestServer(t *testing.T, profiles ...model.Profile) *testServer {
	t.Helper()

	ts := &testServer{
		profiles:  &memProfiles{profiles: map[string]model.Profile{}},
		accounts:  &memAccounts{accounts: map[string]model.SocialAccount{}},
		secrets:   vault.NewMemoryStore(),
		generator: &stubGenerator{},
	}
	for _, p := range profiles {
		ts.profiles.profiles[p.UserID] = p
	}

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	verifier := identity.NewJWTVerifier(testSecret, testAudience)
	posts := &memPosts{posts: map[string]model.Post{}}
	generations := &memGenerations{}

	generationService := service.NewGenerationService(ts.profiles, generations, ts.generator, bus)
	accountService := service.NewAccountService(ts.accounts, ts.secrets, bus)
	registry := session.NewRegistry(session.Deps{
		SignOuter: identity.NewSignOutClient("", "", nil),
		Notifier:  session.NewEventNotifier(bus),
	})

	cfg := &config.Config{
		RequestTimeout:       10 * time.Second,
		CORSOrigins:          []string{"*"},
		RateLimitRPM:         1000,
		FunctionRateLimitRPM: 1000,
	}

	ts.Server = httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(verifier), router.Handlers{
		Function:  handler.NewFunctionHandler(verifier, generationService, accountService),
		Profile:   handler.NewProfileHandler(service.NewProfileService(ts.profiles), generationService, accountService),
		Post:      handler.NewPostHandler(service.NewPostService(posts, bus)),
		Analytics: handler.NewAnalyticsHandler(service.NewAnalyticsService(posts, memAnalytics{})),
		Session:   handler.NewSessionHandler(registry),
		Events:    handler.NewEventsHandler(hub, cfg.CORSOrigins),
		Docs:      handler.NewDocsHandler("../../docs/openapi.yaml"),
	}))
	t.Cleanup(ts.Close)

	return ts
}

func signToken(t *testing.T, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        userID,
		"aud":        testAudience,
		"role":       "authenticated",
		"session_id": "session-" + userID,
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doAuthJSONRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Response {
	t.Helper()
	return doRequest(t, newAuthRequest(t, method, url, body, accessToken))
}
