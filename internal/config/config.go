package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultModel = "llama3-8b-8192"
	DefaultPort  = "5001"
)

var defaultAllowedOrigins = []string{"http://127.0.0.1:5501", "http://localhost:5501"}

// ErrMissingAPIKey is returned when no Groq API key could be resolved.
var ErrMissingAPIKey = errors.New("config: Groq API key is required")

type Config struct {
	Server ServerConfig
	Groq   GroqConfig
	App    AppConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string
	StaticDir      string
}

type GroqConfig struct {
	APIKey      string
	APIKeyParam string
	Model       string
	BaseURL     string
	Timeout     time.Duration
}

type AppConfig struct {
	Debug              bool
	AllowMissingAPIKey bool
}

// SecretFetcher resolves a named secret, e.g. from SSM Parameter Store.
type SecretFetcher func(ctx context.Context, name string) (string, error)

// Load reads configuration from the environment, after loading a .env file
// when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("HOST", "0.0.0.0"),
			Port:           getEnv("PORT", DefaultPort),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
			StaticDir:      getEnvAllowEmpty("STATIC_DIR", "."),
		},
		Groq: GroqConfig{
			APIKey:      strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
			APIKeyParam: strings.TrimSpace(os.Getenv("GROQ_API_KEY_PARAM")),
			Model:       getEnv("GROQ_MODEL", DefaultModel),
			BaseURL:     getEnv("GROQ_BASE_URL", ""),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", 30*time.Second),
		},
		App: AppConfig{
			Debug:              getEnvAsBool("DEBUG", getEnvAsBool("FLASK_DEBUG", false)),
			AllowMissingAPIKey: getEnvAsBool("ALLOW_MISSING_API_KEY", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("config: PORT must be numeric, got %q", c.Server.Port)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("config: CORS_ALLOWED_ORIGINS must not be empty")
	}
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			continue
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("config: invalid CORS origin %q", o)
		}
	}
	if c.Groq.Model == "" {
		return errors.New("config: GROQ_MODEL must not be empty")
	}
	if c.Groq.Timeout <= 0 {
		return errors.New("config: GROQ_TIMEOUT must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// AllowAllOrigins reports whether the CORS policy is the wildcard.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// ResolveAPIKey fills Groq.APIKey from the secret store when it is not set
// directly and GROQ_API_KEY_PARAM names a parameter. It returns
// ErrMissingAPIKey when no key is available afterwards.
func (c *Config) ResolveAPIKey(ctx context.Context, fetch SecretFetcher) error {
	if c.Groq.APIKey != "" {
		return nil
	}
	if c.Groq.APIKeyParam != "" && fetch != nil {
		key, err := fetch(ctx, c.Groq.APIKeyParam)
		if err != nil {
			return fmt.Errorf("config: resolve api key from %q: %w", c.Groq.APIKeyParam, err)
		}
		c.Groq.APIKey = strings.TrimSpace(key)
	}
	if c.Groq.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimRight(strings.TrimSpace(part), "/"); part != "" {
			out = append(out, part)
		}
	}
	return out
}
