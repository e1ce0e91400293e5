// Package log builds the slog loggers of the crawler.
//
// Every logger returned here is wrapped in a SecureHandler, which masks
// attribute values that carry credentials. The crawler may hold an API
// bearer token and talks through an optional authenticated proxy, so request
// attributes must never reach the log in clear text.
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("request sent", "authorization", "Bearer abc") // authorization=***REDACTED***
package log
