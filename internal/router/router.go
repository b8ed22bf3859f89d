package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"social-scheduler/internal/config"
	"social-scheduler/internal/handler"
	"social-scheduler/internal/middleware"
)

type Handlers struct {
	Function  *handler.FunctionHandler
	Profile   *handler.ProfileHandler
	Post      *handler.PostHandler
	Analytics *handler.AnalyticsHandler
	Session   *handler.SessionHandler
	Events    *handler.EventsHandler
	Docs      *handler.DocsHandler
	// Health reports dependency health for /health. Nil always reports ok.
	Health func(ctx context.Context) error
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.FunctionRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if h.Health != nil {
			if err := h.Health(req.Context()); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if h.Docs != nil {
		r.Group(func(docs chi.Router) {
			docs.Use(rateLimitMiddleware.Handler)
			docs.Get("/openapi.yaml", h.Docs.OpenAPI)
			docs.Get("/swagger", h.Docs.SwaggerUI)
		})
	}

	// The limiter runs after CORS so rejected requests stay readable by browsers.
	r.Route("/functions/v1", func(fn chi.Router) {
		fn.Use(middleware.FunctionCORS)
		fn.Use(rateLimitMiddleware.Handler)

		fn.With(middleware.FunctionTimeout(cfg.RequestTimeout, http.StatusInternalServerError)).
			Post("/generate-ai-content", h.Function.GenerateContent)
		fn.With(middleware.FunctionTimeout(cfg.RequestTimeout, http.StatusBadRequest)).
			Post("/social-media-auth", h.Function.SocialMediaAuth)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.CORS(cfg.CORSOrigins))
		api.Use(rateLimitMiddleware.Handler)

		// The websocket route must stay outside Timeout, which buffers responses and cannot hijack.
		api.With(authMiddleware.RequireAuthOrQuery).Get("/events/ws", h.Events.Stream)

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.Timeout(cfg.RequestTimeout))
			authed.Use(authMiddleware.RequireAuth)

			authed.Get("/profile", h.Profile.Me)
			authed.Get("/generations", h.Profile.Generations)
			authed.Get("/accounts", h.Profile.Accounts)

			authed.Post("/posts", h.Post.Create)
			authed.Get("/posts", h.Post.List)
			authed.Get("/posts/{post_id}", h.Post.Get)
			authed.Put("/posts/{post_id}/schedule", h.Post.Schedule)
			authed.Post("/posts/{post_id}/publish", h.Post.Publish)
			authed.Get("/calendar", h.Post.Calendar)

			authed.Get("/analytics/summary", h.Analytics.Summary)
			authed.Get("/analytics/weekly", h.Analytics.Weekly)

			authed.Route("/session", func(s chi.Router) {
				s.Get("/", h.Session.Status)
				s.Post("/activity", h.Session.Activity)
				s.Post("/extend", h.Session.Extend)
				s.Post("/logout", h.Session.Logout)
				s.Get("/preferences", h.Session.GetPreferences)
				s.Put("/preferences", h.Session.PutPreferences)
			})
		})
	})

	return r
}
