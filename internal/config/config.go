package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"sharebox-go/internal/selection"
	"sharebox-go/internal/validation"
)

const (
	defaultOrigin       = "http://localhost:8080"
	defaultPort         = 8080
	defaultMaxFileSize  = "500MB"
	defaultMaxTotalSize = "2GB"
	defaultMaxFiles     = 50
	defaultSessionTTL   = time.Hour
)

// Config holds client configuration
type Config struct {
	APIURL         string        `validate:"required,httpurl"` // Base URL of the sharing backend
	Origin         string        `validate:"required,httpurl"` // Origin share links are built on
	Port           int           `validate:"gt=0"`             // Port the web front listens on
	Env            string        // Environment (development | production)
	MaxFileSize    int64         `validate:"gt=0"` // Per-file limit in bytes
	MaxTotalSize   int64         `validate:"gt=0"` // Per-selection limit in bytes
	MaxFiles       int           `validate:"gt=0"` // Per-selection file count limit
	RequestTimeout time.Duration `validate:"gte=0"` // Zero disables the per-request deadline
	SessionTTL     time.Duration `validate:"gt=0"`  // Idle web sessions are dropped after this
	Storage        StorageConfig
}

func (c *Config) Log() {
	log.Info().
		Str("api_url", c.APIURL).
		Str("origin", c.Origin).
		Int("port", c.Port).
		Str("env", c.Env).
		Int64("max_file_size", c.MaxFileSize).
		Int64("max_total_size", c.MaxTotalSize).
		Int("max_files", c.MaxFiles).
		Dur("request_timeout", c.RequestTimeout).
		Dur("session_ttl", c.SessionTTL).
		Str("storage_provider", c.Storage.Provider).
		Msg("client configuration")
}

// Limits returns the selection limits configured for uploads.
func (c *Config) Limits() selection.Limits {
	return selection.Limits{
		MaxFileSize:  c.MaxFileSize,
		MaxFiles:     c.MaxFiles,
		MaxTotalSize: c.MaxTotalSize,
		AllowedTypes: selection.AllowedTypes(),
	}
}

// StorageConfig selects where received files are written.
type StorageConfig struct {
	// Provider type ("local" or "gcs")
	Provider string `json:"provider"`

	// Local storage config
	LocalPath string `json:"local_path,omitempty"`

	// GCS config
	ProjectID  string `json:"project_id,omitempty"`
	BucketName string `json:"bucket_name,omitempty"`
}

// Option overrides a value read from the environment.
type Option func(*Config)

// WithAPIURL overrides SHAREBOX_API_URL unless url is empty.
func WithAPIURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.APIURL = strings.TrimRight(url, "/")
		}
	}
}

// WithOrigin overrides SHAREBOX_ORIGIN unless origin is empty.
func WithOrigin(origin string) Option {
	return func(c *Config) {
		if origin != "" {
			c.Origin = strings.TrimRight(origin, "/")
		}
	}
}

// NewConfig creates a client configuration from environment variables
func NewConfig(opts ...Option) (*Config, error) {
	apiURL := strings.TrimRight(os.Getenv("SHAREBOX_API_URL"), "/")

	origin := strings.TrimRight(os.Getenv("SHAREBOX_ORIGIN"), "/")
	if origin == "" {
		origin = defaultOrigin
	}

	port := defaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 {
			log.Error().Err(err).Msg("invalid PORT environment variable")
			return nil, fmt.Errorf("invalid PORT: %q", portStr)
		}
		port = p
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "production"
	}

	maxFileSize, err := parseSize(envOr("SHAREBOX_MAX_FILE_SIZE", defaultMaxFileSize))
	if err != nil {
		log.Error().Err(err).Msg("invalid SHAREBOX_MAX_FILE_SIZE configuration")
		return nil, fmt.Errorf("invalid SHAREBOX_MAX_FILE_SIZE: %w", err)
	}

	maxTotalSize, err := parseSize(envOr("SHAREBOX_MAX_TOTAL_SIZE", defaultMaxTotalSize))
	if err != nil {
		log.Error().Err(err).Msg("invalid SHAREBOX_MAX_TOTAL_SIZE configuration")
		return nil, fmt.Errorf("invalid SHAREBOX_MAX_TOTAL_SIZE: %w", err)
	}

	maxFiles := defaultMaxFiles
	if s := os.Getenv("SHAREBOX_MAX_FILES"); s != "" {
		maxFiles, err = strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SHAREBOX_MAX_FILES: %w", err)
		}
	}

	var requestTimeout time.Duration
	if s := os.Getenv("SHAREBOX_REQUEST_TIMEOUT"); s != "" {
		requestTimeout, err = parseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SHAREBOX_REQUEST_TIMEOUT: %w", err)
		}
	}

	sessionTTL := defaultSessionTTL
	if s := os.Getenv("SHAREBOX_SESSION_TTL"); s != "" {
		sessionTTL, err = parseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SHAREBOX_SESSION_TTL: %w", err)
		}
	}

	storageConfig := StorageConfig{
		Provider:   envOr("STORAGE_PROVIDER", "local"),
		LocalPath:  envOr("DOWNLOAD_DIR", "."),
		ProjectID:  os.Getenv("GCS_PROJECT_ID"),
		BucketName: os.Getenv("GCS_BUCKET_NAME"),
	}
	if err := validateStorageConfig(storageConfig); err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	cfg := &Config{
		APIURL:         apiURL,
		Origin:         origin,
		Port:           port,
		Env:            env,
		MaxFileSize:    maxFileSize,
		MaxTotalSize:   maxTotalSize,
		MaxFiles:       maxFiles,
		RequestTimeout: requestTimeout,
		SessionTTL:     sessionTTL,
		Storage:        storageConfig,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.APIURL == "" {
		log.Error().Msg("SHAREBOX_API_URL environment variable is required")
		return nil, fmt.Errorf("SHAREBOX_API_URL is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints. Callers that override fields after
// NewConfig (CLI flags) call it again.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		msgs := validation.FormatError(err)
		if len(msgs) == 0 {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		parts := make([]string, 0, len(msgs))
		for _, m := range msgs {
			parts = append(parts, m.Error)
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
	}
	return nil
}

// validateStorageConfig ensures the storage configuration is valid
func validateStorageConfig(cfg StorageConfig) error {
	switch cfg.Provider {
	case "local":
		if cfg.LocalPath == "" {
			return fmt.Errorf("DOWNLOAD_DIR is required for local storage")
		}
	case "gcs":
		if cfg.ProjectID == "" {
			return fmt.Errorf("GCS_PROJECT_ID is required for GCS storage")
		}
		if cfg.BucketName == "" {
			return fmt.Errorf("GCS_BUCKET_NAME is required for GCS storage")
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseSize parses a byte size postfixed with "MB" for megabytes or "GB" for
// gigabytes, e.g. "500MB". Without a postfix the value is taken as megabytes.
func parseSize(size string) (int64, error) {
	size = strings.TrimSpace(size)
	multiplier := int64(1024 * 1024)

	switch {
	case strings.HasSuffix(size, "GB"):
		multiplier = 1024 * 1024 * 1024
		size = strings.TrimSuffix(size, "GB")
	case strings.HasSuffix(size, "MB"):
		size = strings.TrimSuffix(size, "MB")
	}

	value, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", size, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", value)
	}
	if value > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size %q is too large", size)
	}
	return value * multiplier, nil
}

// parseDuration accepts Go durations ("90s", "5m") or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
