// Package logger provides structured logging utilities built on Go's standard slog package.
//
// Create loggers with the factory function and preset environments:
//
//	log := logger.New(logger.WithDevelopment("storefront"))
//	log := logger.New(logger.WithProduction("storefront"), logger.WithLevel(slog.LevelWarn))
//
// Attribute helpers are nil-safe and return an empty attribute for nil or empty values,
// so they can be passed unconditionally:
//
//	log.Error("cart sync failed",
//		logger.Component("cart"),
//		logger.BookID(id),
//		logger.Error(err),
//	)
package logger
