package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Typed configuration errors; these abort before any page is processed.
var (
	ErrMissingAPIKey    = errors.New("STRUCTEX_API_KEY is required")
	ErrInvalidStartPage = errors.New("start page must be >= 1")
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Document identity stamped on every parse.
	DocumentTitle   string
	DocumentVersion string

	// Defaults for a parse run; requests may override.
	StartPage int // 1-indexed
	PageCount int // 0 means all remaining pages

	// Pipeline
	PrefetchDepth int
	WorkerCount   int
	MaxQueueSize  int

	// Boilerplate detection
	RemoveHeadersFooters bool
	FilterSampleSize     int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8092"),

		APIKey: os.Getenv("STRUCTEX_API_KEY"),

		DocumentTitle:   envOr("DOCUMENT_TITLE", "2021 International Building Code"),
		DocumentVersion: envOr("DOCUMENT_VERSION", "2021"),

		StartPage: envInt("START_PAGE", 1),
		PageCount: envInt("PAGE_COUNT", 0),

		PrefetchDepth: envInt("PREFETCH_DEPTH", 8),
		WorkerCount:   envInt("WORKER_COUNT", 2),
		MaxQueueSize:  envInt("MAX_QUEUE_SIZE", 50),

		RemoveHeadersFooters: envBool("REMOVE_HEADERS_FOOTERS", true),
		FilterSampleSize:     envInt("FILTER_SAMPLE_SIZE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 209715200), // 200MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.PrefetchDepth <= 0 {
		cfg.PrefetchDepth = 8
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.FilterSampleSize <= 0 {
		cfg.FilterSampleSize = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 209715200
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.StartPage < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidStartPage, c.StartPage)
	}
	if c.PageCount < 0 {
		return fmt.Errorf("PAGE_COUNT must be >= 0, got %d", c.PageCount)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
