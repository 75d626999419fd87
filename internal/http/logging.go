package http

import (
	"context"
	"log/slog"
)

// defaultLogger guards handler constructors against a nil logger.
func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger resolves the request-scoped logger, falling back to the
// handler's own, and scopes it with the handler and operation names.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	scoped := make([]any, 0, 4+len(attrs))
	scoped = append(scoped, "handler", handlerName)
	if operation != "" {
		scoped = append(scoped, "operation", operation)
	}
	scoped = append(scoped, attrs...)
	return logger.With(scoped...)
}
