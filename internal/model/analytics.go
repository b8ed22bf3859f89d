package model

import "time"

type AnalyticsRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PostID      *string   `json:"post_id,omitempty"`
	Platform    string    `json:"platform"`
	Date        time.Time `json:"date"`
	Likes       int       `json:"likes"`
	Comments    int       `json:"comments"`
	Shares      int       `json:"shares"`
	Reach       int       `json:"reach"`
	Impressions int       `json:"impressions"`
}

type PlatformStats struct {
	Platform   string `json:"platform"`
	Posts      int    `json:"posts"`
	Engagement int    `json:"engagement"`
}

type TopPost struct {
	ID         string `json:"id"`
	Platform   string `json:"platform"`
	Content    string `json:"content"`
	Engagement int    `json:"engagement"`
	Reach      int    `json:"reach"`
}

type AnalyticsSummary struct {
	TotalPosts      int             `json:"total_posts"`
	ScheduledPosts  int             `json:"scheduled_posts"`
	TotalEngagement int             `json:"total_engagement"`
	TotalReach      int             `json:"total_reach"`
	EngagementRate  float64         `json:"engagement_rate"`
	TopPosts        []TopPost       `json:"top_posts"`
	Platforms       []PlatformStats `json:"platforms"`
}

type DailyPoint struct {
	Date        string `json:"date"`
	Likes       int    `json:"likes"`
	Comments    int    `json:"comments"`
	Shares      int    `json:"shares"`
	Reach       int    `json:"reach"`
	Impressions int    `json:"impressions"`
}
