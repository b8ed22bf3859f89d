package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// OAuthPlatforms are the platforms whose <PLATFORM>_CLIENT_ID / _CLIENT_SECRET are read.
var OAuthPlatforms = []string{"instagram", "linkedin", "twitter", "facebook"}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	CORSOrigins             []string
	RateLimitRPM            int
	FunctionRateLimitRPM    int
	OpenAPISpecPath         string

	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	DBStatementTimeout time.Duration

	AuthJWTSecret   string
	AuthJWTAudience string
	AuthURL         string
	AuthAnonKey     string

	GenerationProvider string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiAPIKey       string
	GeminiModel        string

	TokenEncryptionKey   string
	TokenRefreshInterval time.Duration
	TokenRefreshWindow   time.Duration
	OAuthClients         map[string]OAuthClient

	SchedulerInterval    time.Duration
	SessionSweepInterval time.Duration

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 0),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 60*time.Second),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		FunctionRateLimitRPM:    getInt("FUNCTION_RATE_LIMIT_RPM", 20),
		OpenAPISpecPath:         getEnv("OPENAPI_SPEC_PATH", "./docs/openapi.yaml"),

		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:         int32(getInt("DB_MIN_CONNS", 1)),
		DBStatementTimeout: getDuration("DB_STATEMENT_TIMEOUT", 15*time.Second),

		AuthJWTSecret:   strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")),
		AuthJWTAudience: getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
		AuthURL:         strings.TrimSpace(os.Getenv("AUTH_URL")),
		AuthAnonKey:     strings.TrimSpace(os.Getenv("AUTH_ANON_KEY")),

		GenerationProvider: strings.ToLower(getEnv("GENERATION_PROVIDER", "openai")),
		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		TokenEncryptionKey:   strings.TrimSpace(os.Getenv("TOKEN_ENCRYPTION_KEY")),
		TokenRefreshInterval: getDuration("TOKEN_REFRESH_INTERVAL", 15*time.Minute),
		TokenRefreshWindow:   getDuration("TOKEN_REFRESH_WINDOW", 24*time.Hour),
		OAuthClients:         loadOAuthClients(),

		SchedulerInterval:    getDuration("SCHEDULER_INTERVAL", 30*time.Second),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Second),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.AuthJWTSecret) == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	if len(c.TokenEncryptionKey) < 32 {
		return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be at least 32 characters")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}

	switch c.GenerationProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when GENERATION_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when GENERATION_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("GENERATION_PROVIDER must be openai or gemini, got %q", c.GenerationProvider)
	}

	switch c.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be pretty or json, got %q", c.LogFormat)
	}

	return nil
}

func loadOAuthClients() map[string]OAuthClient {
	out := map[string]OAuthClient{}
	for _, platform := range OAuthPlatforms {
		prefix := strings.ToUpper(platform)
		client := OAuthClient{
			ClientID:     strings.TrimSpace(os.Getenv(prefix + "_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv(prefix + "_CLIENT_SECRET")),
		}
		if client.ClientID == "" || client.ClientSecret == "" {
			continue
		}
		out[platform] = client
	}
	return out
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
