// Package logger provides structured logging for the PSR scraper built on zerolog.
//
// The package exposes a Logger interface with leveled logging and structured
// fields, a global logger configured from config.LoggingConfig, and test
// helpers (TestLogger captures messages, NewNopLogger discards them).
//
// Console output uses a colored pretty writer; when a log file is configured
// output is mirrored to both the console and the file.
//
// Usage:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("subreddit", "PhotoshopRequest").Info("starting scrape")
package logger
