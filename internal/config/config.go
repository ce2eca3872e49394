package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // ANALYSIS_TIMEZONE must resolve on images without a zoneinfo database

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv string
	Port   int

	// Database (sqlite by default, pgx for Postgres)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: AWS S3, MinIO, R2, ...)
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string        // Optional: for S3-compatible services
	S3UsePathStyle        bool          // Required by MinIO and most S3-compatible services
	S3PresignExpiryUpload time.Duration // Write locator TTL
	S3PresignExpiryRead   time.Duration // Read locator TTL

	// Queue
	SQSQueueURL       string
	SQSEndpoint       string // Optional: local emulators
	WorkerConcurrency int
	WorkerWaitTime    time.Duration

	// Object-store webhook
	EventsWebhookSecret string

	// Analysis
	OpenAIAPIKey             string
	OpenAIBaseURL            string
	OpenAIChatModel          string
	OpenAITranscriptionModel string
	AnalysisLanguage         string
	AnalysisTimezone         string
	AnalysisTimeout          time.Duration
}

// Load reads .env (if any) and the environment. Every missing required key is
// reported in the returned error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	var missing []error
	required := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		missing = append(missing, fmt.Errorf("config: required env var %s is missing", key))
		return ""
	}

	cfg := &Config{
		AppEnv: envString("APP_ENV", "development"),
		Port:   envInt("PORT", 8080),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/foodiary.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTSecret: envString("JWT_SECRET", ""),
		JWTExpiry: envDuration("JWT_EXPIRY", 72*time.Hour), // 3 days

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:              required("S3_REGION"),
		S3Bucket:              required("S3_BUCKET"),
		S3AccessKey:           envString("S3_ACCESS_KEY", ""),
		S3SecretKey:           envString("S3_SECRET_KEY", ""),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3UsePathStyle:        envBool("S3_USE_PATH_STYLE", os.Getenv("S3_ENDPOINT") != ""),
		S3PresignExpiryUpload: envDuration("S3_PRESIGN_EXPIRY_UPLOAD", 10*time.Minute),
		S3PresignExpiryRead:   envDuration("S3_PRESIGN_EXPIRY_READ", 10*time.Minute),

		SQSQueueURL:       required("SQS_QUEUE_URL"),
		SQSEndpoint:       envString("SQS_ENDPOINT", ""),
		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 4),
		WorkerWaitTime:    envDuration("WORKER_WAIT_TIME", 20*time.Second),

		EventsWebhookSecret: envString("EVENTS_WEBHOOK_SECRET", ""),

		OpenAIAPIKey:             envString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:            envString("OPENAI_BASE_URL", ""),
		OpenAIChatModel:          envString("OPENAI_CHAT_MODEL", "gpt-4.1-mini"),
		OpenAITranscriptionModel: envString("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
		AnalysisLanguage:         envString("ANALYSIS_LANGUAGE", "pt"),
		AnalysisTimezone:         envString("ANALYSIS_TIMEZONE", "America/Sao_Paulo"),
		AnalysisTimeout:          envDuration("ANALYSIS_TIMEOUT", 60*time.Second),
	}

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}

	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return cfg, nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// RequireAuth is checked by the API server, the only binary that issues and
// validates access tokens.
func (c *Config) RequireAuth() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("config: required env var JWT_SECRET is missing")
	case len(c.JWTSecret) < 16:
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// RequireAnalysis is checked by the binaries that call the analysis service.
// The notifier only enqueues and does not need it.
func (c *Config) RequireAnalysis() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("config: required env var OPENAI_API_KEY is missing")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves AnalysisTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AnalysisTimezone)
	if err != nil {
		slog.Warn("config invalid timezone, using UTC", "timezone", c.AnalysisTimezone)
		return time.UTC
	}
	return loc
}
