package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/livestow"
)

type nameKey struct{}

// NameValidationMiddleware rejects requests whose path is not a valid object
// name and stores the resolved name for the handlers behind it.
func NameValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, err := livestow.NameFromPath(r.URL.Path)
		if err != nil {
			slog.Debug("rejected object name", "path", r.URL.Path, "error", err)
			WriteError(w, http.StatusBadRequest, "invalid_name", "Invalid object name")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), nameKey{}, name)))
	})
}

// objectName returns the name resolved by NameValidationMiddleware.
func objectName(r *http.Request) string {
	name, _ := r.Context().Value(nameKey{}).(string)
	return name
}

// RequestLogger logs one line per request once the handler returns. For
// downloads this is when the stream ends, so the duration covers the tail.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		slog.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
