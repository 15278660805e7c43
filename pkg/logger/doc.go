// Package logger builds application loggers on top of log/slog.
//
// It provides a small factory with environment presets, attribute helpers for
// the identifiers this application logs most (user, session, request), and a
// handler decorator that pulls request-scoped attributes out of the context
// at log time.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "infanps"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
package logger
