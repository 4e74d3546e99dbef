// Package http provides the REST handlers of the prompt server.
//
// Endpoints:
//   - / and /health: banner, catalog size and live session counts
//   - /prompts and /prompts/:name: the prompt catalog
//   - /docs/:dir/*file: one docs.json entry rendered to HTML
//
// Prompts themselves run over WebSocket; see package ws.
//
// Example Usage:
//
//	handlers := http.NewHandlers(cat, store, metrics)
//	router.GET("/prompts", handlers.ListPrompts)
package http
