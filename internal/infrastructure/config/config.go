package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Prompt    PromptConfig
	Docs      DocsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// PromptConfig holds prompt session settings.
type PromptConfig struct {
	Dir             string        `envconfig:"PROMPT_DIR" default:"./prompts"`
	PreviewDebounce time.Duration `envconfig:"PROMPT_PREVIEW_DEBOUNCE" default:"0s"`
	ScriptTimeout   time.Duration `envconfig:"PROMPT_SCRIPT_TIMEOUT" default:"5s"`
	KitMode         string        `envconfig:"KIT_MODE" default:"js"` // "js" or "ts"
}

// DocsConfig locates the docs.json used to enrich choice previews.
// URL wins over Path when both are set.
type DocsConfig struct {
	Path string `envconfig:"DOCS_PATH" default:""`
	URL  string `envconfig:"DOCS_URL" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig lists the browser origins allowed to open prompts.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Prompt: PromptConfig{
			Dir:             "./prompts",
			PreviewDebounce: 0,
			ScriptTimeout:   5 * time.Second,
			KitMode:         "js",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
