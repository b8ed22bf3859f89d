package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/model"
)

type GenerationRepository struct {
	pool *pgxpool.Pool
}

func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepository {
	return &GenerationRepository{pool: pool}
}

func (r *GenerationRepository) Create(ctx context.Context, g model.Generation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ai_generations (user_id, prompt, generated_content, platform, tone, industry, hashtags)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		g.UserID, g.Prompt, g.GeneratedContent, g.Platform, g.Tone, g.Industry, g.Hashtags)
	if err != nil {
		return fmt.Errorf("create generation: %w", err)
	}
	return nil
}

func (r *GenerationRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, user_id::text, prompt, generated_content, platform, tone, industry, hashtags, created_at
		 FROM ai_generations
		 WHERE user_id = $1::uuid
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	out := make([]model.Generation, 0)
	for rows.Next() {
		var g model.Generation
		if err := rows.Scan(&g.ID, &g.UserID, &g.Prompt, &g.GeneratedContent, &g.Platform,
			&g.Tone, &g.Industry, &g.Hashtags, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
