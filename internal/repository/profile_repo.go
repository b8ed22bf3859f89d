package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/content"
	"social-scheduler/internal/model"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT user_id::text, subscription_tier, posts_used_this_month, stripe_customer_id,
		        stripe_subscription_id, subscription_status, subscription_end_date,
		        full_name, avatar_url, created_at, updated_at
		 FROM profiles WHERE user_id = $1::uuid`, userID).
		Scan(&p.UserID, &p.SubscriptionTier, &p.PostsUsedThisMonth, &p.StripeCustomerID,
			&p.StripeSubscriptionID, &p.SubscriptionStatus, &p.SubscriptionEndDate,
			&p.FullName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, model.ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ReserveGeneration increments the monthly counter only while it is below limit.
// It returns the new count, or ErrQuotaExceeded when no unit was left.
func (r *ProfileRepository) ReserveGeneration(ctx context.Context, userID string, limit int) (int, error) {
	var used int
	err := r.pool.QueryRow(ctx,
		`UPDATE profiles
		 SET posts_used_this_month = posts_used_this_month + 1, updated_at = now()
		 WHERE user_id = $1::uuid AND ($2::int = $3::int OR posts_used_this_month < $2::int)
		 RETURNING posts_used_this_month`, userID, limit, content.Unlimited).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrQuotaExceeded
	}
	if err != nil {
		return 0, fmt.Errorf("reserve generation: %w", err)
	}
	return used, nil
}

// ReleaseGeneration gives back a reserved unit after a failed generation.
func (r *ProfileRepository) ReleaseGeneration(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles
		 SET posts_used_this_month = GREATEST(posts_used_this_month - 1, 0), updated_at = now()
		 WHERE user_id = $1::uuid`, userID)
	if err != nil {
		return fmt.Errorf("release generation: %w", err)
	}
	return nil
}
