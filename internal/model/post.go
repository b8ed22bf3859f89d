package model

import "time"

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostScheduled PostStatus = "scheduled"
	PostPublished PostStatus = "published"
)

type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Reach    int `json:"reach"`
}

func (e *Engagement) Total() int {
	if e == nil {
		return 0
	}
	return e.Likes + e.Comments + e.Shares
}

type Post struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Content       string      `json:"content"`
	Platform      string      `json:"platform"`
	Status        PostStatus  `json:"status"`
	ScheduledTime *time.Time  `json:"scheduled_time,omitempty"`
	Hashtags      []string    `json:"hashtags"`
	ImageURL      string      `json:"image_url,omitempty"`
	Engagement    *Engagement `json:"engagement_data,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// PostFilter narrows a post listing. Empty or "all" fields do not filter.
type PostFilter struct {
	Query    string
	Status   string
	Platform string
}

// Applied returns the non-empty filter values keyed by query parameter.
func (f PostFilter) Applied() map[string]string {
	out := map[string]string{}
	for key, value := range map[string]string{"q": f.Query, "status": f.Status, "platform": f.Platform} {
		if value != "" && value != "all" {
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type PostListData struct {
	Posts []Post `json:"posts"`
}

type CalendarDay struct {
	Date  string `json:"date"`
	Day   int    `json:"day"`
	Posts []Post `json:"posts"`
}

// CalendarMonth is a month grid. LeadingBlank cells pad the first week.
type CalendarMonth struct {
	Year         int            `json:"year"`
	Month        int            `json:"month"`
	LeadingBlank int            `json:"leading_blank"`
	Days         []*CalendarDay `json:"days"`
}
