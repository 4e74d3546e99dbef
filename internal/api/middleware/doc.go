// Package middleware holds the gin middleware in front of the prompt server.
//
//   - CORS: which browser origins may fetch the catalog and open prompts
//   - RateLimit: per-IP token buckets; idle clients are dropped
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
