package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shopmesh/storefront/internal/util"
)

// Recoverer converts panics into the uniform 500 envelope instead of
// dropping the connection.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic while handling request",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
					util.JSONResponse(w, http.StatusInternalServerError, map[string]any{
						"success": false,
						"error":   "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
