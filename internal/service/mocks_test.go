package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-scheduler/internal/content"
	"social-scheduler/internal/model"
)

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) Get(ctx context.Context, userID string) (model.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *mockProfileStore) ReserveGeneration(ctx context.Context, userID string, limit int) (int, error) {
	args := m.Called(ctx, userID, limit)
	return args.Int(0), args.Error(1)
}

func (m *mockProfileStore) ReleaseGeneration(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockGenerationLog struct {
	mock.Mock
}

func (m *mockGenerationLog) Create(ctx context.Context, g model.Generation) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *mockGenerationLog) ListRecent(ctx context.Context, userID string, limit int) ([]model.Generation, error) {
	args := m.Called(ctx, userID, limit)
	if v := args.Get(0); v != nil {
		return v.([]model.Generation), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt content.Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockAccountStore struct {
	mock.Mock
}

func (m *mockAccountStore) Upsert(ctx context.Context, account model.SocialAccount) (*string, error) {
	args := m.Called(ctx, account)
	if v := args.Get(0); v != nil {
		return v.(*string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStore) GetByPlatform(ctx context.Context, userID string, platform string) (model.SocialAccount, error) {
	args := m.Called(ctx, userID, platform)
	return args.Get(0).(model.SocialAccount), args.Error(1)
}

func (m *mockAccountStore) ListByUser(ctx context.Context, userID string) ([]model.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]model.SocialAccount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStore) Disconnect(ctx context.Context, userID string, platform string) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

type mockPostStore struct {
	mock.Mock
}

func (m *mockPostStore) Create(ctx context.Context, post model.Post) (model.Post, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *mockPostStore) Get(ctx context.Context, userID string, postID string) (model.Post, error) {
	args := m.Called(ctx, userID, postID)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *mockPostStore) List(ctx context.Context, userID string, filter model.PostFilter) ([]model.Post, error) {
	args := m.Called(ctx, userID, filter)
	if v := args.Get(0); v != nil {
		return v.([]model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostStore) ListScheduledBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]model.Post, error) {
	args := m.Called(ctx, userID, from, to)
	if v := args.Get(0); v != nil {
		return v.([]model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostStore) SetStatus(ctx context.Context, userID string, postID string, status model.PostStatus, scheduledTime *time.Time) (model.Post, error) {
	args := m.Called(ctx, userID, postID, status, scheduledTime)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *mockPostStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Post, error) {
	args := m.Called(ctx, now, limit)
	if v := args.Get(0); v != nil {
		return v.([]model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAnalyticsStore struct {
	mock.Mock
}

func (m *mockAnalyticsStore) Daily(ctx context.Context, userID string, from time.Time, to time.Time) ([]model.DailyPoint, error) {
	args := m.Called(ctx, userID, from, to)
	if v := args.Get(0); v != nil {
		return v.([]model.DailyPoint), args.Error(1)
	}
	return nil, args.Error(1)
}

func sameTime(want time.Time) any {
	return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
}
