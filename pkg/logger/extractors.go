package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestID adds "request_id" from chi's RequestID middleware.
func RequestID() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := middleware.GetReqID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}

// Static adds a fixed attribute to every record, such as the service name.
func Static(key, value string) ContextExtractor {
	return func(context.Context) (slog.Attr, bool) {
		return slog.String(key, value), true
	}
}
