// Package server wires the prompt server together.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Load docs.json from DOCS_URL or DOCS_PATH (optional)
//  3. Scan the prompt catalog directory
//  4. Setup middleware (recovery, metrics, CORS, rate limiting) and routes
//  5. Serve until Shutdown
//
// Routes:
//
//	GET /                  banner
//	GET /health            catalog size and live session counts
//	GET /prompts           catalog listing
//	GET /prompts/:name     one catalog entry
//	GET /docs/:dir/*file   a doc rendered to HTML
//	GET /prompt/:name      WebSocket: run the prompt
//	GET /metrics           Prometheus exposition
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, nil, prometheus.NewRegistry())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
