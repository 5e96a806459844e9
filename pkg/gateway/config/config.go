package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthModeRequired AuthMode = "required"
	AuthModeOptional AuthMode = "optional"
	AuthModeDisabled AuthMode = "disabled"
)

type Config struct {
	Addr string

	AuthMode AuthMode
	APIKeys  map[string]struct{}

	// If true, client identity may be derived from proxy headers like X-Forwarded-For.
	// This should only be enabled when the gateway is deployed behind a trusted proxy/LB.
	TrustProxyHeaders bool

	MaxBodyBytes int64

	// Resume uploads are limited separately from JSON bodies.
	MaxResumeBytes int64

	// Postgres DSN. Empty selects the in-memory store.
	DatabaseURL    string
	MigrateOnStart bool

	// Voice provider credentials and webhook validation.
	ProviderAPIKey string
	WebhookSecret  string

	// Public URL of this gateway, used as the assistant's webhook callback.
	PublicBaseURL string

	// Interview planning.
	DefaultDurationMinutes int
	MinQuestions           int
	MaxQuestions           int

	// Optional LLM feedback rater. Empty key disables it.
	RaterAPIKey string
	RaterModel  string

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	HandlerTimeout      time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                   envOr("INTERVIEWD_ADDR", ":8720"),
		AuthMode:               AuthMode(envOr("INTERVIEWD_AUTH_MODE", string(AuthModeDisabled))),
		APIKeys:                make(map[string]struct{}),
		TrustProxyHeaders:      envBoolOr("INTERVIEWD_TRUST_PROXY_HEADERS", false),
		MaxBodyBytes:           envInt64Or("INTERVIEWD_MAX_BODY_BYTES", 1<<20),    // 1 MiB
		MaxResumeBytes:         envInt64Or("INTERVIEWD_MAX_RESUME_BYTES", 10<<20), // 10 MiB
		DatabaseURL:            strings.TrimSpace(os.Getenv("INTERVIEWD_DATABASE_URL")),
		MigrateOnStart:         envBoolOr("INTERVIEWD_MIGRATE_ON_START", true),
		ProviderAPIKey:         strings.TrimSpace(os.Getenv("INTERVIEWD_PROVIDER_API_KEY")),
		WebhookSecret:          strings.TrimSpace(os.Getenv("INTERVIEWD_WEBHOOK_SECRET")),
		PublicBaseURL:          envOr("INTERVIEWD_PUBLIC_BASE_URL", "http://localhost:8720"),
		DefaultDurationMinutes: envIntOr("INTERVIEWD_DEFAULT_DURATION_MINUTES", 30),
		MinQuestions:           envIntOr("INTERVIEWD_MIN_QUESTIONS", 3),
		MaxQuestions:           envIntOr("INTERVIEWD_MAX_QUESTIONS", 10),
		RaterAPIKey:            strings.TrimSpace(os.Getenv("INTERVIEWD_RATER_API_KEY")),
		RaterModel:             envOr("INTERVIEWD_RATER_MODEL", ""),
		CORSAllowedOrigins:     make(map[string]struct{}),
		ReadHeaderTimeout:      envDurationOr("INTERVIEWD_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:            envDurationOr("INTERVIEWD_READ_TIMEOUT", 30*time.Second),
		HandlerTimeout:         envDurationOr("INTERVIEWD_TOTAL_REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownGracePeriod:    envDurationOr("INTERVIEWD_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	switch cfg.AuthMode {
	case AuthModeRequired, AuthModeOptional, AuthModeDisabled:
	default:
		return Config{}, fmt.Errorf("INTERVIEWD_AUTH_MODE must be one of required|optional|disabled")
	}

	for _, key := range splitCSV(os.Getenv("INTERVIEWD_API_KEYS")) {
		cfg.APIKeys[key] = struct{}{}
	}

	for _, origin := range splitCSV(os.Getenv("INTERVIEWD_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_MAX_BODY_BYTES must be > 0")
	}
	if cfg.MaxResumeBytes <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_MAX_RESUME_BYTES must be > 0")
	}
	if cfg.DefaultDurationMinutes <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_DEFAULT_DURATION_MINUTES must be > 0")
	}
	if cfg.MinQuestions <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_MIN_QUESTIONS must be > 0")
	}
	if cfg.MaxQuestions < cfg.MinQuestions {
		return Config{}, fmt.Errorf("INTERVIEWD_MAX_QUESTIONS must be >= INTERVIEWD_MIN_QUESTIONS")
	}
	if strings.TrimSpace(cfg.PublicBaseURL) == "" {
		return Config{}, fmt.Errorf("INTERVIEWD_PUBLIC_BASE_URL must not be empty")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_READ_TIMEOUT must be > 0")
	}
	if cfg.HandlerTimeout <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_TOTAL_REQUEST_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	if cfg.AuthMode == AuthModeRequired && len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("INTERVIEWD_API_KEYS must be set when INTERVIEWD_AUTH_MODE=required")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
