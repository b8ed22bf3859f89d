package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/model"
)

type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Daily sums the user's metrics per day for dates in [from, to].
func (r *AnalyticsRepository) Daily(ctx context.Context, userID string, from time.Time, to time.Time) ([]model.DailyPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date, SUM(likes), SUM(comments), SUM(shares), SUM(reach), SUM(impressions)
		 FROM analytics
		 WHERE user_id = $1::uuid AND date BETWEEN $2::date AND $3::date
		 GROUP BY date
		 ORDER BY date ASC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily analytics: %w", err)
	}
	defer rows.Close()

	out := make([]model.DailyPoint, 0)
	for rows.Next() {
		var day time.Time
		var p model.DailyPoint
		if err := rows.Scan(&day, &p.Likes, &p.Comments, &p.Shares, &p.Reach, &p.Impressions); err != nil {
			return nil, fmt.Errorf("scan analytics: %w", err)
		}
		p.Date = day.Format(time.DateOnly)
		out = append(out, p)
	}
	return out, rows.Err()
}
