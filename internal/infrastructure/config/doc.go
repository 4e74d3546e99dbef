// Package config provides 12-factor configuration management for the prompt
// runtime.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/ override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Prompt: catalog directory, preview debounce, script timeout, kit mode
//   - Docs: docs.json location used for preview enrichment
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: allowed origins for the HTTP and WebSocket surface
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Serving prompts from %s on %s:%s\n", cfg.Prompt.Dir, cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - PROMPT_DIR, PROMPT_PREVIEW_DEBOUNCE, PROMPT_SCRIPT_TIMEOUT, KIT_MODE
//   - DOCS_PATH, DOCS_URL
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
