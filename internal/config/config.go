// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Auth        AuthConfig
	Reviews     ReviewsConfig
	OpenLibrary OpenLibraryConfig
	Summary     SummaryConfig
	RateLimit   RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates on-disk state: the database, search index, cache and token key.
type DataConfig struct {
	BasePath string
}

// DatabasePath is the SQLite database file.
func (d DataConfig) DatabasePath() string { return filepath.Join(d.BasePath, "shelfnotes.db") }

// SearchPath is the directory holding the catalog search index.
func (d DataConfig) SearchPath() string { return filepath.Join(d.BasePath, "search") }

// CachePath is the directory holding the external search cache.
func (d DataConfig) CachePath() string { return filepath.Join(d.BasePath, "cache") }

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins (default: any)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokenDuration is the fixed lifetime of an access token.
	TokenDuration time.Duration
	// KeyPath is the directory holding the token key; defaults to the data directory.
	KeyPath string
}

// ReviewsConfig holds review rules.
type ReviewsConfig struct {
	RatingMin int
	RatingMax int
}

// OpenLibraryConfig configures the external book search.
type OpenLibraryConfig struct {
	BaseURL           string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
}

// SummaryConfig configures the review summarizer. An empty APIKey disables it.
type SummaryConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig bounds credential endpoint traffic per client IP.
type RateLimitConfig struct {
	AuthRequestsPerMinute int
	AuthBurst             int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	cfg, err := load(fs, os.Args[1:])
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

//nolint:funlen // one line per setting
func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database, search index and cache")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	tokenDuration := fs.String("token-duration", "", "Access token lifetime (default: 1h)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is normal; variables already in the environment win.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	var errs []error
	duration := func(flagValue, key, def string) time.Duration {
		raw := getConfigValue(flagValue, key, def)
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		}
		return d
	}
	integer := func(key string, def int) int {
		raw := getConfigValue("", key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		}
		return n
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:         getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			ReadTimeout:  duration("", "SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: duration("", "SERVER_WRITE_TIMEOUT", "30s"),
			IdleTimeout:  duration("", "SERVER_IDLE_TIMEOUT", "60s"),
			CORSOrigins:  splitList(getConfigValue("", "CORS_ORIGINS", "")),
		},
		Auth: AuthConfig{
			TokenDuration: duration(*tokenDuration, "TOKEN_DURATION", "1h"),
			KeyPath:       getConfigValue("", "AUTH_KEY_PATH", ""),
		},
		Reviews: ReviewsConfig{
			RatingMin: integer("REVIEW_RATING_MIN", 1),
			RatingMax: integer("REVIEW_RATING_MAX", 5),
		},
		OpenLibrary: OpenLibraryConfig{
			BaseURL:           getConfigValue("", "OPENLIBRARY_BASE_URL", "https://openlibrary.org"),
			Timeout:           duration("", "OPENLIBRARY_TIMEOUT", "10s"),
			CacheTTL:          duration("", "OPENLIBRARY_CACHE_TTL", "1h"),
			RequestsPerSecond: getFloatConfigValue("OPENLIBRARY_RPS", 1, &errs),
		},
		Summary: SummaryConfig{
			APIKey:  getConfigValue("", "GEMINI_API_KEY", ""),
			Model:   getConfigValue("", "GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL: getConfigValue("", "GEMINI_BASE_URL", ""),
			Timeout: duration("", "GEMINI_TIMEOUT", "30s"),
		},
		RateLimit: RateLimitConfig{
			AuthRequestsPerMinute: integer("AUTH_RATE_LIMIT_PER_MINUTE", 20),
			AuthBurst:             integer("AUTH_RATE_LIMIT_BURST", 5),
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("token duration must be positive, got %s", c.Auth.TokenDuration)
	}

	if c.Reviews.RatingMin > c.Reviews.RatingMax {
		return fmt.Errorf("invalid rating bounds: min %d exceeds max %d", c.Reviews.RatingMin, c.Reviews.RatingMax)
	}

	if c.OpenLibrary.Timeout <= 0 {
		return errors.New("open library timeout must be positive")
	}

	if c.RateLimit.AuthRequestsPerMinute <= 0 || c.RateLimit.AuthBurst <= 0 {
		return errors.New("auth rate limit and burst must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the data directory (default ~/Shelfnotes) and the key directory inside it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "Shelfnotes"))
	if err != nil {
		return err
	}
	c.Data.BasePath = base

	keyPath, err := expandPath(c.Auth.KeyPath, base)
	if err != nil {
		return err
	}
	c.Auth.KeyPath = keyPath
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getFloatConfigValue(envKey string, defaultValue float64, errs *[]error) float64 {
	raw := os.Getenv(envKey)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", envKey, raw, err))
	}
	return f
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
