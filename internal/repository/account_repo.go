package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/model"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id::text, user_id::text, platform, platform_user_id, platform_username,
	token_reference_id::text, is_connected, created_at, updated_at`

func scanAccount(row pgx.Row) (model.SocialAccount, error) {
	var a model.SocialAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.PlatformUserID, &a.PlatformUsername,
		&a.TokenReferenceID, &a.IsConnected, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Upsert writes the account for (user, platform) and returns the token
// reference it replaced, if any.
func (r *AccountRepository) Upsert(ctx context.Context, account model.SocialAccount) (*string, error) {
	var previous *string

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT token_reference_id::text FROM social_accounts
			 WHERE user_id = $1::uuid AND platform = $2
			 FOR UPDATE`, account.UserID, account.Platform).Scan(&previous)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lock account: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO social_accounts (user_id, platform, platform_user_id, platform_username, token_reference_id, is_connected)
			 VALUES ($1::uuid, $2, $3, $4, $5::uuid, $6)
			 ON CONFLICT (user_id, platform) DO UPDATE
			 SET platform_user_id = EXCLUDED.platform_user_id,
			     platform_username = EXCLUDED.platform_username,
			     token_reference_id = EXCLUDED.token_reference_id,
			     is_connected = EXCLUDED.is_connected,
			     updated_at = now()`,
			account.UserID, account.Platform, account.PlatformUserID, account.PlatformUsername,
			account.TokenReferenceID, account.IsConnected)
		if err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return previous, nil
}

func (r *AccountRepository) GetByPlatform(ctx context.Context, userID string, platform string) (model.SocialAccount, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM social_accounts WHERE user_id = $1::uuid AND platform = $2`,
		userID, platform))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SocialAccount{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.SocialAccount{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]model.SocialAccount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM social_accounts WHERE user_id = $1::uuid ORDER BY platform`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]model.SocialAccount, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Disconnect clears the token reference and marks the account disconnected.
func (r *AccountRepository) Disconnect(ctx context.Context, userID string, platform string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE social_accounts
		 SET is_connected = false, token_reference_id = NULL, updated_at = now()
		 WHERE user_id = $1::uuid AND platform = $2`, userID, platform)
	if err != nil {
		return fmt.Errorf("disconnect account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}
