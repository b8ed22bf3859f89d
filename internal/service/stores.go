package service

import (
	"context"
	"time"

	"social-scheduler/internal/model"
)

// The interfaces below are satisfied by the repository package and let the
// services be exercised against mocks.

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
	ReserveGeneration(ctx context.Context, userID string, limit int) (int, error)
	ReleaseGeneration(ctx context.Context, userID string) error
}

// GenerationLog records completed generations. Writes are best-effort: a
// failed Create is logged by the caller and never fails the generation.
type GenerationLog interface {
	Create(ctx context.Context, g model.Generation) error
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Generation, error)
}

type AccountStore interface {
	Upsert(ctx context.Context, account model.SocialAccount) (*string, error)
	GetByPlatform(ctx context.Context, userID string, platform string) (model.SocialAccount, error)
	ListByUser(ctx context.Context, userID string) ([]model.SocialAccount, error)
	Disconnect(ctx context.Context, userID string, platform string) error
}

type PostStore interface {
	Create(ctx context.Context, post model.Post) (model.Post, error)
	Get(ctx context.Context, userID string, postID string) (model.Post, error)
	List(ctx context.Context, userID string, filter model.PostFilter) ([]model.Post, error)
	ListScheduledBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]model.Post, error)
	SetStatus(ctx context.Context, userID string, postID string, status model.PostStatus, scheduledTime *time.Time) (model.Post, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Post, error)
}

type AnalyticsStore interface {
	Daily(ctx context.Context, userID string, from time.Time, to time.Time) ([]model.DailyPoint, error)
}
