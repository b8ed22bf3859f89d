package handler

import (
	"context"
	"net/http"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
)

type analyticsReporter interface {
	Summary(ctx context.Context, userID string) (model.AnalyticsSummary, error)
	Weekly(ctx context.Context, userID string) ([]model.DailyPoint, error)
}

type AnalyticsHandler struct {
	analytics analyticsReporter
}

func NewAnalyticsHandler(analytics analyticsReporter) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	summary, err := h.analytics.Summary(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, summary, nil)
}

func (h *AnalyticsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	series, err := h.analytics.Weekly(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"days": series}, nil)
}
