package handler

import (
	"errors"
	"net/http"
	"strings"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
	"social-scheduler/internal/session"
	"social-scheduler/pkg/apierror"
)

// allowedPreferences are the client keys a user may write through the API.
var allowedPreferences = map[string]struct{}{
	session.PrefRememberMe:      {},
	session.PrefUserPreferences: {},
	session.PrefLastRoute:       {},
}

type SessionHandler struct {
	registry *session.Registry
}

func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	writeSuccess(w, http.StatusOK, m.Tick(r.Context()), nil)
}

func (h *SessionHandler) Activity(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	var payload model.SessionActivityRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	signal, valid := session.ParseSignal(payload.Signal)
	if !valid {
		writeError(w, apierror.BadRequest("unsupported activity signal", payload.Signal))
		return
	}

	if !m.Activity(r.Context(), signal) {
		writeError(w, session.ErrExpired)
		return
	}

	writeSuccess(w, http.StatusOK, m.Status(), nil)
}

func (h *SessionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	status, err := m.Extend(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, status, nil)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	var payload model.SessionLogoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, err)
			return
		}
	}

	opts := session.LogoutOptions{RememberMe: payload.RememberMe}
	if payload.Confirmed != nil {
		confirmed := *payload.Confirmed
		opts.Confirm = func() bool { return confirmed }
	}

	loggedOut, err := m.Logout(r.Context(), opts)
	if errors.Is(err, session.ErrExpired) {
		writeError(w, err)
		return
	}
	if err != nil {
		writeError(w, apierror.New(apierror.CodeUpstream, "There was an error logging out. Please try again.", "Logout Error", http.StatusBadGateway))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": loggedOut, "session": m.Status()}, nil)
}

func (h *SessionHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"values": h.registry.Preferences().All(claims.UserID)}, nil)
}

func (h *SessionHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.PreferencesRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	for key := range payload.Values {
		if _, allowed := allowedPreferences[key]; !allowed {
			writeError(w, apierror.BadRequest("unsupported preference key", key))
			return
		}
	}

	prefs := h.registry.Preferences()
	for key, value := range payload.Values {
		if strings.TrimSpace(value) == "" {
			prefs.Delete(claims.UserID, key)
			continue
		}
		prefs.Set(claims.UserID, key, value)
	}

	writeSuccess(w, http.StatusOK, map[string]any{"values": prefs.All(claims.UserID)}, nil)
}

// manager resolves the caller's session. The identity session id keys it so
// a fresh sign-in starts a new session while an ended one stays ended.
func (h *SessionHandler) manager(w http.ResponseWriter, r *http.Request) (*session.Manager, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return nil, false
	}

	key := claims.SessionID
	if key == "" {
		key = claims.Token
	}

	return h.registry.Open(claims.UserID, key, claims.Token, claims.ExpiresAt), true
}
