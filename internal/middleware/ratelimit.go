package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopmesh/storefront/config"
	"github.com/shopmesh/storefront/internal/kv"
	"github.com/shopmesh/storefront/internal/util"
)

// RateLimit applies a fixed-window counter per (path, client IP) backed by
// the KV store's Incr. The window key carries its own expiry, so abandoned
// windows age out of the store.
//
// Storage failures fail open: a broken store must not take the API down
// with it.
func RateLimit(store kv.Store, cfg config.RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		windowSecs := int64(cfg.Window.Seconds())
		if windowSecs <= 0 {
			windowSecs = 60
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			window := time.Now().Unix() / windowSecs
			key := fmt.Sprintf("ratelimit:%s:%s:%d", r.URL.Path, util.ClientIP(r), window)

			count, err := store.Incr(r.Context(), key, cfg.Window)
			if err != nil {
				logger.Error("rate limit counter failure", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > cfg.Max {
				util.JSONResponse(w, http.StatusTooManyRequests, map[string]any{
					"success": false,
					"error":   "too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
