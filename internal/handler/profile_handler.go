package handler

import (
	"context"
	"net/http"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
)

type profileViewer interface {
	View(ctx context.Context, userID string) (model.ProfileView, error)
}

type generationHistory interface {
	History(ctx context.Context, userID string, limit int) (model.GenerationListData, error)
}

type accountLister interface {
	List(ctx context.Context, userID string) ([]model.AccountStatus, error)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type ProfileHandler struct {
	profiles    profileViewer
	generations generationHistory
	accounts    accountLister
}

func NewProfileHandler(profiles profileViewer, generations generationHistory, accounts accountLister) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, generations: generations, accounts: accounts}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	view, err := h.profiles.View(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

func (h *ProfileHandler) Generations(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	data, err := h.generations.History(r.Context(), claims.UserID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data, &model.ListMeta{Count: len(data.Generations), Limit: limit})
}

func (h *ProfileHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	accounts, err := h.accounts.List(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"accounts": accounts}, nil)
}
