package handler

import (
	"log/slog"
	"net/http"

	ws "github.com/gorilla/websocket"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
	"social-scheduler/internal/websocket"
)

type EventsHandler struct {
	hub      *websocket.Hub
	upgrader ws.Upgrader
}

func NewEventsHandler(hub *websocket.Hub, origins []string) *EventsHandler {
	return &EventsHandler{hub: hub, upgrader: websocket.Upgrader(origins)}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	// The upgrader has already written an HTTP error when this fails.
	if err := h.hub.Serve(h.upgrader, w, r, claims.UserID); err != nil {
		slog.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
	}
}
