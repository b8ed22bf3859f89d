package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/model"
)

// EncryptedStore keeps sealed token blobs in social_account_secrets.
// Only routing columns (owner, platform, expiry) are stored in the clear.
type EncryptedStore struct {
	pool   *pgxpool.Pool
	sealer *Sealer
}

func NewEncryptedStore(pool *pgxpool.Pool, sealer *Sealer) *EncryptedStore {
	return &EncryptedStore{pool: pool, sealer: sealer}
}

func (s *EncryptedStore) Put(ctx context.Context, ref string, tokens model.StoredTokens) error {
	plaintext, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode secret: %w", err)
	}

	ciphertext, nonce, err := s.sealer.Seal(plaintext, []byte(ref))
	if err != nil {
		return fmt.Errorf("seal secret: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO social_account_secrets (ref, user_id, platform, ciphertext, nonce, expires_at, refreshable, created_at, updated_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, now(), now())
		 ON CONFLICT (ref) DO UPDATE
		 SET ciphertext = EXCLUDED.ciphertext,
		     nonce = EXCLUDED.nonce,
		     expires_at = EXCLUDED.expires_at,
		     refreshable = EXCLUDED.refreshable,
		     updated_at = now()`,
		ref, tokens.UserID, tokens.Platform, ciphertext, nonce, tokens.ExpiresAt, tokens.RefreshToken != "")
	if err != nil {
		return fmt.Errorf("store secret: %w", err)
	}
	return nil
}

func (s *EncryptedStore) Get(ctx context.Context, ref string) (model.StoredTokens, error) {
	var ciphertext, nonce []byte
	err := s.pool.QueryRow(ctx,
		`SELECT ciphertext, nonce FROM social_account_secrets WHERE ref = $1::uuid`, ref).
		Scan(&ciphertext, &nonce)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StoredTokens{}, model.ErrSecretNotFound
	}
	if err != nil {
		return model.StoredTokens{}, fmt.Errorf("load secret: %w", err)
	}

	return s.open(ref, ciphertext, nonce)
}

func (s *EncryptedStore) Delete(ctx context.Context, ref string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM social_account_secrets WHERE ref = $1::uuid`, ref); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

func (s *EncryptedStore) Expiring(ctx context.Context, q ExpiringQuery) (ExpiringPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultExpiringLimit
	}

	query := `SELECT ref::text, expires_at, ciphertext, nonce
		 FROM social_account_secrets
		 WHERE refreshable AND expires_at IS NOT NULL AND expires_at < $1`
	args := []any{q.Cutoff}
	if len(q.Platforms) > 0 {
		args = append(args, q.Platforms)
		query += fmt.Sprintf(" AND platform = ANY($%d)", len(args))
	}
	if !q.After.IsZero() {
		args = append(args, q.After.ExpiresAt, q.After.Ref)
		query += fmt.Sprintf(" AND (expires_at, ref) > ($%d, $%d::uuid)", len(args)-1, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY expires_at ASC, ref ASC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return ExpiringPage{}, fmt.Errorf("list expiring secrets: %w", err)
	}
	defer rows.Close()

	page := ExpiringPage{Entries: make([]Entry, 0)}
	read := 0
	for rows.Next() {
		var ref string
		var expiresAt time.Time
		var ciphertext, nonce []byte
		if err := rows.Scan(&ref, &expiresAt, &ciphertext, &nonce); err != nil {
			return ExpiringPage{}, fmt.Errorf("scan secret: %w", err)
		}
		read++
		page.Next = Cursor{ExpiresAt: expiresAt, Ref: ref}

		tokens, err := s.open(ref, ciphertext, nonce)
		if err != nil {
			slog.Warn("skipping unreadable secret", "ref", ref, "error", err)
			continue
		}
		page.Entries = append(page.Entries, Entry{Ref: ref, Tokens: tokens})
	}
	if err := rows.Err(); err != nil {
		return ExpiringPage{}, fmt.Errorf("list expiring secrets: %w", err)
	}

	page.More = read == limit
	return page, nil
}

func (s *EncryptedStore) open(ref string, ciphertext []byte, nonce []byte) (model.StoredTokens, error) {
	plaintext, err := s.sealer.Open(ciphertext, nonce, []byte(ref))
	if err != nil {
		return model.StoredTokens{}, fmt.Errorf("open secret %s: %w", ref, err)
	}

	var tokens model.StoredTokens
	if err := json.Unmarshal(plaintext, &tokens); err != nil {
		return model.StoredTokens{}, fmt.Errorf("decode secret: %w", err)
	}
	return tokens, nil
}
