package service

import (
	"context"
	"math"
	"sort"
	"time"

	"social-scheduler/internal/model"
)

const (
	topPostCount = 5
	weeklyDays   = 7
)

type AnalyticsService struct {
	posts   PostStore
	metrics AnalyticsStore
	now     func() time.Time
}

func NewAnalyticsService(posts PostStore, metrics AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{posts: posts, metrics: metrics, now: time.Now}
}

// Summary aggregates engagement over every post the user owns. Engagement
// is likes plus comments plus shares; the rate is engagement over reach as a
// percentage with one decimal.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (model.AnalyticsSummary, error) {
	posts, err := s.posts.List(ctx, userID, model.PostFilter{})
	if err != nil {
		return model.AnalyticsSummary{}, err
	}

	summary := model.AnalyticsSummary{
		TopPosts:  []model.TopPost{},
		Platforms: []model.PlatformStats{},
	}
	byPlatform := map[string]*model.PlatformStats{}
	ranked := make([]model.TopPost, 0, len(posts))

	for _, post := range posts {
		summary.TotalPosts++
		if post.Status == model.PostScheduled {
			summary.ScheduledPosts++
		}

		stats, ok := byPlatform[post.Platform]
		if !ok {
			stats = &model.PlatformStats{Platform: post.Platform}
			byPlatform[post.Platform] = stats
		}
		stats.Posts++

		if post.Engagement == nil {
			continue
		}
		total := post.Engagement.Total()
		summary.TotalEngagement += total
		summary.TotalReach += post.Engagement.Reach
		stats.Engagement += total
		ranked = append(ranked, model.TopPost{
			ID:         post.ID,
			Platform:   post.Platform,
			Content:    post.Content,
			Engagement: total,
			Reach:      post.Engagement.Reach,
		})
	}

	summary.EngagementRate = engagementRate(summary.TotalEngagement, summary.TotalReach)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagement > ranked[j].Engagement
	})
	if len(ranked) > topPostCount {
		ranked = ranked[:topPostCount]
	}
	summary.TopPosts = append(summary.TopPosts, ranked...)

	for _, stats := range byPlatform {
		summary.Platforms = append(summary.Platforms, *stats)
	}
	sort.Slice(summary.Platforms, func(i, j int) bool {
		return summary.Platforms[i].Platform < summary.Platforms[j].Platform
	})

	return summary, nil
}

// Weekly returns one point per day for the last seven days ending today (UTC).
// Days without rows are zero.
func (s *AnalyticsService) Weekly(ctx context.Context, userID string) ([]model.DailyPoint, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(weeklyDays - 1))

	rows, err := s.metrics.Daily(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]model.DailyPoint, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	out := make([]model.DailyPoint, 0, weeklyDays)
	for i := 0; i < weeklyDays; i++ {
		date := from.AddDate(0, 0, i).Format(time.DateOnly)
		point, ok := byDate[date]
		if !ok {
			point = model.DailyPoint{Date: date}
		}
		out = append(out, point)
	}
	return out, nil
}

func engagementRate(engagement int, reach int) float64 {
	if reach <= 0 {
		return 0
	}
	return math.Round(float64(engagement)/float64(reach)*1000) / 10
}
