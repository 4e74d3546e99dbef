// Package main runs the prompt server.
//
// Hosts list the catalog over REST and open a WebSocket per prompt:
//
//	Browser host → GET /prompts
//	             → WS  /prompt/:name  (events in, render frames out)
//
// Configuration:
//   - Environment variables (PORT, PROMPT_DIR, DOCS_PATH, DOCS_URL, ...)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -prompts ./prompts -docs ./data/docs.json
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
