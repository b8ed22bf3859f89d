package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
	"social-scheduler/pkg/apierror"
)

type postManager interface {
	Create(ctx context.Context, userID string, req model.CreatePostRequest) (model.Post, error)
	Get(ctx context.Context, userID string, postID string) (model.Post, error)
	List(ctx context.Context, userID string, filter model.PostFilter) (model.PostListData, error)
	Schedule(ctx context.Context, userID string, postID string, at *time.Time) (model.Post, error)
	Publish(ctx context.Context, userID string, postID string) (model.Post, error)
	Calendar(ctx context.Context, userID string, year int, month int) (model.CalendarMonth, error)
	CurrentMonth() (int, int)
}

type PostHandler struct {
	posts postManager
}

func NewPostHandler(posts postManager) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.CreatePostRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, post, nil)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	query := r.URL.Query()
	filter := model.PostFilter{
		Query:    strings.TrimSpace(query.Get("q")),
		Status:   strings.TrimSpace(query.Get("status")),
		Platform: strings.TrimSpace(query.Get("platform")),
	}

	data, err := h.posts.List(r.Context(), claims.UserID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, &model.ListMeta{Count: len(data.Posts), Filters: filter.Applied()})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, postID, ok := h.postTarget(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), claims.UserID, postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, post, nil)
}

func (h *PostHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	claims, postID, ok := h.postTarget(w, r)
	if !ok {
		return
	}

	var payload model.SchedulePostRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Schedule(r.Context(), claims.UserID, postID, payload.ScheduledTime)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, post, nil)
}

func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	claims, postID, ok := h.postTarget(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Publish(r.Context(), claims.UserID, postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, post, nil)
}

func (h *PostHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	year, month := h.posts.CurrentMonth()
	year = parseIntOrDefault(r.URL.Query().Get("year"), year)
	month = parseIntOrDefault(r.URL.Query().Get("month"), month)

	grid, err := h.posts.Calendar(r.Context(), claims.UserID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, grid, nil)
}

func (h *PostHandler) postTarget(w http.ResponseWriter, r *http.Request) (*model.AuthClaims, string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return nil, "", false
	}

	postID := strings.TrimSpace(chi.URLParam(r, "post_id"))
	if postID == "" {
		writeError(w, apierror.BadRequest("post_id is required", "post_id"))
		return nil, "", false
	}

	return claims, postID, true
}
