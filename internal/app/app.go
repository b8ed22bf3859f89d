package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-scheduler/internal/ai"
	"social-scheduler/internal/config"
	"social-scheduler/internal/database"
	"social-scheduler/internal/event"
	"social-scheduler/internal/handler"
	"social-scheduler/internal/identity"
	"social-scheduler/internal/middleware"
	"social-scheduler/internal/repository"
	"social-scheduler/internal/router"
	"social-scheduler/internal/service"
	"social-scheduler/internal/session"
	"social-scheduler/internal/vault"
	"social-scheduler/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, database.Options{
		URL:              cfg.DatabaseURL,
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: cfg.DBStatementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	sealer, err := vault.NewSealer(cfg.TokenEncryptionKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token sealer: %w", err)
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize generation provider: %w", err)
	}

	pool := db.Pool
	profileRepo := repository.NewProfileRepository(pool)
	generationRepo := repository.NewGenerationRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	secrets := vault.NewEncryptedStore(pool, sealer)
	slog.Info("database ready")

	bus := event.NewBus()
	hub := websocket.NewHub(bus)

	verifier := identity.NewJWTVerifier(cfg.AuthJWTSecret, cfg.AuthJWTAudience)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	registry := session.NewRegistry(session.Deps{
		SignOuter: identity.NewSignOutClient(cfg.AuthURL, cfg.AuthAnonKey, nil),
		Notifier:  session.NewEventNotifier(bus),
	})

	generationService := service.NewGenerationService(profileRepo, generationRepo, generator, bus)
	accountService := service.NewAccountService(accountRepo, secrets, bus)
	postService := service.NewPostService(postRepo, bus)
	analyticsService := service.NewAnalyticsService(postRepo, analyticsRepo)
	profileService := service.NewProfileService(profileRepo)
	publisher := service.NewPublisher(postRepo, bus)

	oauthConfigs := vault.PlatformConfigs(platformCredentials(cfg))
	refresher := vault.NewRefresher(secrets, oauthConfigs, cfg.TokenRefreshWindow, bus)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Function:  handler.NewFunctionHandler(verifier, generationService, accountService),
		Profile:   handler.NewProfileHandler(profileService, generationService, accountService),
		Post:      handler.NewPostHandler(postService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Session:   handler.NewSessionHandler(registry),
		Events:    handler.NewEventsHandler(hub, cfg.CORSOrigins),
		Docs:      handler.NewDocsHandler(cfg.OpenAPISpecPath),
		Health:    db.Health,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	go hub.Run(workerCtx)
	go registry.Run(workerCtx, cfg.SessionSweepInterval)
	go publisher.Run(workerCtx, cfg.SchedulerInterval)
	if len(oauthConfigs) > 0 {
		go refresher.Run(workerCtx, cfg.TokenRefreshInterval)
	} else {
		slog.Info("token refresher disabled: no platform OAuth clients configured")
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			workerCancel,
			bus.Close,
			func() {
				if err := closeGenerator(); err != nil {
					slog.Warn("failed to close generation provider", "error", err)
				}
			},
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}

func newGenerator(ctx context.Context, cfg *config.Config) (ai.Generator, func() error, error) {
	switch cfg.GenerationProvider {
	case "gemini":
		gemini, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("generation provider ready", "provider", "gemini", "model", cfg.GeminiModel)
		return gemini, gemini.Close, nil
	default:
		slog.Info("generation provider ready", "provider", "openai", "model", cfg.OpenAIModel)
		openai := ai.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, nil)
		return openai, func() error { return nil }, nil
	}
}

func platformCredentials(cfg *config.Config) map[string]vault.Credentials {
	out := make(map[string]vault.Credentials, len(cfg.OAuthClients))
	for platform, client := range cfg.OAuthClients {
		out[platform] = vault.Credentials{ClientID: client.ClientID, ClientSecret: client.ClientSecret}
	}
	return out
}
