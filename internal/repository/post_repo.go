package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/model"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id::text, user_id::text, content, platform, status, scheduled_time,
	hashtags, image_url, engagement_data, created_at, updated_at`

func scanPost(row pgx.Row) (model.Post, error) {
	var p model.Post
	var status string
	var engagement []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.Platform, &status, &p.ScheduledTime,
		&p.Hashtags, &p.ImageURL, &engagement, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Post{}, err
	}
	p.Status = model.PostStatus(status)
	if len(engagement) > 0 {
		var e model.Engagement
		if err := json.Unmarshal(engagement, &e); err != nil {
			return model.Post{}, fmt.Errorf("decode engagement: %w", err)
		}
		p.Engagement = &e
	}
	return p, nil
}

func collectPosts(rows pgx.Rows) ([]model.Post, error) {
	defer rows.Close()

	out := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}

	created, err := scanPost(r.pool.QueryRow(ctx,
		`INSERT INTO social_posts (user_id, content, platform, status, scheduled_time, hashtags, image_url)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		 RETURNING `+postColumns,
		post.UserID, post.Content, post.Platform, string(post.Status), post.ScheduledTime,
		post.Hashtags, post.ImageURL))
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

func (r *PostRepository) Get(ctx context.Context, userID string, postID string) (model.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM social_posts WHERE id = $1::uuid AND user_id = $2::uuid`,
		postID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List returns the user's posts, newest first, narrowed by filter.
func (r *PostRepository) List(ctx context.Context, userID string, filter model.PostFilter) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+`
		 FROM social_posts
		 WHERE user_id = $1::uuid
		   AND ($2 = '' OR content ILIKE '%' || $2 || '%' ESCAPE '\')
		   AND ($3 = '' OR status = $3)
		   AND ($4 = '' OR platform = $4)
		 ORDER BY created_at DESC`,
		userID, escapeLike(filter.Query), filter.Status, filter.Platform)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

// ListScheduledBetween returns posts with a schedule time in [from, to).
func (r *PostRepository) ListScheduledBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+`
		 FROM social_posts
		 WHERE user_id = $1::uuid AND scheduled_time >= $2 AND scheduled_time < $3
		 ORDER BY scheduled_time ASC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list scheduled posts: %w", err)
	}
	return collectPosts(rows)
}

// SetStatus moves an unpublished post to status. Published posts are final.
func (r *PostRepository) SetStatus(ctx context.Context, userID string, postID string, status model.PostStatus, scheduledTime *time.Time) (model.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx,
		`UPDATE social_posts
		 SET status = $3, scheduled_time = COALESCE($4, scheduled_time), updated_at = now()
		 WHERE id = $1::uuid AND user_id = $2::uuid AND status <> 'published'
		 RETURNING `+postColumns, postID, userID, string(status), scheduledTime))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.Get(ctx, userID, postID); getErr != nil {
			return model.Post{}, getErr
		}
		return model.Post{}, model.ErrInvalidTransition
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("update post status: %w", err)
	}
	return p, nil
}

// ClaimDue publishes up to limit scheduled posts whose time has come.
// SKIP LOCKED keeps concurrent workers from claiming the same rows.
func (r *PostRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := r.pool.Query(ctx,
		`UPDATE social_posts
		 SET status = 'published', updated_at = now()
		 WHERE id IN (
		     SELECT id FROM social_posts
		     WHERE status = 'scheduled' AND scheduled_time IS NOT NULL AND scheduled_time <= $1
		     ORDER BY scheduled_time ASC
		     LIMIT $2
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+postColumns, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due posts: %w", err)
	}
	return collectPosts(rows)
}

func escapeLike(raw string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(strings.TrimSpace(raw))
}
