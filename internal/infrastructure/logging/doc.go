// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The stdio transport owns stdout, so cmd/kit routes logs to stderr by
// setting OutputPaths.
//
// Entries about a prompt carry the same keys everywhere: Session, Conn and
// Prompt build them.
//
// Example Usage:
//
//	logger := logging.FromConfig("info", false)
//	logger.Info("Prompt server starting", zap.String("port", "8000"))
//	logging.ForSession(logger.Logger, id).Error("Session failed", zap.Error(err))
package logging
