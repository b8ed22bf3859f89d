package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"social-scheduler/internal/content"
	"social-scheduler/internal/event"
	"social-scheduler/internal/model"
	"social-scheduler/internal/util"
	"social-scheduler/pkg/apierror"
)

const (
	ModeDraft    = "draft"
	ModeSchedule = "schedule"
)

type PostService struct {
	posts PostStore
	bus   event.Bus
	now   func() time.Time
}

func NewPostService(posts PostStore, bus event.Bus) *PostService {
	return &PostService{posts: posts, bus: bus, now: time.Now}
}

func (s *PostService) Create(ctx context.Context, userID string, req model.CreatePostRequest) (model.Post, error) {
	text := util.SanitizeText(req.Content, 0)
	if text == "" || strings.TrimSpace(req.Platform) == "" {
		return model.Post{}, apierror.BadRequest("Please fill in the content and select a platform.", "Missing Information")
	}

	platform, ok := content.ParsePlatform(req.Platform)
	if !ok {
		return model.Post{}, apierror.BadRequest("Unsupported platform", req.Platform)
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModeDraft
		if req.ScheduledTime != nil {
			mode = ModeSchedule
		}
	}
	if mode != ModeDraft && mode != ModeSchedule {
		return model.Post{}, apierror.BadRequest("mode must be draft or schedule", mode)
	}
	if mode == ModeSchedule && (req.ScheduledTime == nil || req.ScheduledTime.IsZero()) {
		return model.Post{}, apierror.BadRequest("Please set a date and time for your scheduled post.", "Missing Schedule")
	}

	if !platform.Fits(text) {
		message := fmt.Sprintf("Please reduce your content to under %d characters.", platform.CharacterLimit())
		return model.Post{}, apierror.BadRequest(message, "Content Too Long")
	}

	post := model.Post{
		UserID:   userID,
		Content:  text,
		Platform: string(platform),
		Status:   model.PostDraft,
		Hashtags: util.SanitizeTags(req.Hashtags),
		ImageURL: strings.TrimSpace(req.ImageURL),
	}
	if mode == ModeSchedule {
		at := req.ScheduledTime.UTC()
		post.Status = model.PostScheduled
		post.ScheduledTime = &at
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return model.Post{}, err
	}

	s.publish(event.TypePostCreated, created)
	if created.Status == model.PostScheduled {
		s.publish(event.TypePostScheduled, created)
	}

	return created, nil
}

func (s *PostService) Get(ctx context.Context, userID string, postID string) (model.Post, error) {
	post, err := s.posts.Get(ctx, userID, postID)
	if err != nil {
		return model.Post{}, mapPostError(err, postID)
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, userID string, filter model.PostFilter) (model.PostListData, error) {
	normalized := model.PostFilter{
		Query:    util.SanitizeText(filter.Query, 200),
		Status:   filterValue(filter.Status),
		Platform: filterValue(filter.Platform),
	}

	switch model.PostStatus(normalized.Status) {
	case "", model.PostDraft, model.PostScheduled, model.PostPublished:
	default:
		return model.PostListData{}, apierror.BadRequest("invalid status filter", normalized.Status)
	}
	if normalized.Platform != "" {
		if _, ok := content.ParsePlatform(normalized.Platform); !ok {
			return model.PostListData{}, apierror.BadRequest("Unsupported platform", normalized.Platform)
		}
	}

	posts, err := s.posts.List(ctx, userID, normalized)
	if err != nil {
		return model.PostListData{}, err
	}
	return model.PostListData{Posts: posts}, nil
}

func (s *PostService) Schedule(ctx context.Context, userID string, postID string, at *time.Time) (model.Post, error) {
	if at == nil || at.IsZero() {
		return model.Post{}, apierror.BadRequest("Please set a date and time for your scheduled post.", "Missing Schedule")
	}

	utc := at.UTC()
	post, err := s.posts.SetStatus(ctx, userID, postID, model.PostScheduled, &utc)
	if err != nil {
		return model.Post{}, mapPostError(err, postID)
	}

	s.publish(event.TypePostScheduled, post)
	return post, nil
}

func (s *PostService) Publish(ctx context.Context, userID string, postID string) (model.Post, error) {
	post, err := s.posts.SetStatus(ctx, userID, postID, model.PostPublished, nil)
	if err != nil {
		return model.Post{}, mapPostError(err, postID)
	}

	s.publish(event.TypePostPublished, post)
	return post, nil
}

// Calendar lays out one month in UTC. LeadingBlank counts the cells before
// the 1st in a Sunday-first week.
func (s *PostService) Calendar(ctx context.Context, userID string, year int, month int) (model.CalendarMonth, error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return model.CalendarMonth{}, apierror.BadRequest("invalid calendar month", fmt.Sprintf("%d-%d", year, month))
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	posts, err := s.posts.ListScheduledBetween(ctx, userID, first, next)
	if err != nil {
		return model.CalendarMonth{}, err
	}

	daysInMonth := next.AddDate(0, 0, -1).Day()
	grid := model.CalendarMonth{
		Year:         year,
		Month:        month,
		LeadingBlank: int(first.Weekday()),
		Days:         make([]*model.CalendarDay, 0, daysInMonth),
	}
	for day := 1; day <= daysInMonth; day++ {
		grid.Days = append(grid.Days, &model.CalendarDay{
			Date:  first.AddDate(0, 0, day-1).Format(time.DateOnly),
			Day:   day,
			Posts: []model.Post{},
		})
	}

	for _, post := range posts {
		if post.ScheduledTime == nil {
			continue
		}
		at := post.ScheduledTime.UTC()
		if at.Before(first) || !at.Before(next) {
			continue
		}
		cell := grid.Days[at.Day()-1]
		cell.Posts = append(cell.Posts, post)
	}

	return grid, nil
}

// CurrentMonth reports the year and month used when a calendar request names none.
func (s *PostService) CurrentMonth() (int, int) {
	now := s.now().UTC()
	return now.Year(), int(now.Month())
}

func (s *PostService) publish(eventType event.Type, post model.Post) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(postEvent(eventType, post))
}

func postEvent(eventType event.Type, post model.Post) event.Event {
	return event.Event{
		Type:    eventType,
		ActorID: post.UserID,
		Payload: map[string]any{
			"id":             post.ID,
			"platform":       post.Platform,
			"status":         post.Status,
			"scheduled_time": post.ScheduledTime,
		},
	}
}

func mapPostError(err error, postID string) error {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		return apierror.New(apierror.CodeNotFound, "post not found", postID, http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidTransition):
		return apierror.New(apierror.CodeConflict, "published posts cannot change status", postID, http.StatusConflict)
	default:
		return err
	}
}

func filterValue(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "all" {
		return ""
	}
	return v
}

// Publisher moves scheduled posts to published once their time arrives.
type Publisher struct {
	posts PostStore
	bus   event.Bus
	batch int
	now   func() time.Time
}

func NewPublisher(posts PostStore, bus event.Bus) *Publisher {
	return &Publisher{posts: posts, bus: bus, batch: 25, now: time.Now}
}

// PublishDue claims due posts in batches until none are left and reports how many were published.
func (p *Publisher) PublishDue(ctx context.Context) (int, error) {
	total := 0
	for {
		claimed, err := p.posts.ClaimDue(ctx, p.now().UTC(), p.batch)
		if err != nil {
			return total, err
		}

		for _, post := range claimed {
			if p.bus != nil {
				p.bus.Publish(postEvent(event.TypePostPublished, post))
			}
		}
		total += len(claimed)

		if len(claimed) < p.batch || ctx.Err() != nil {
			return total, nil
		}
	}
}

func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PublishDue(ctx)
			if err != nil {
				slog.Error("scheduled publish pass failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("scheduled posts published", "count", n)
			}
		}
	}
}
