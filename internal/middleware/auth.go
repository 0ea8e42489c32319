package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/shopmesh/storefront/internal/util"
)

type contextKey string

const (
	userIDKey  contextKey = "storefront.user_id"
	isAdminKey contextKey = "storefront.is_admin"
)

// Authenticator verifies bearer tokens issued by the identity provider
// against its published JWKS. With no JWKS URL configured, verification is
// disabled and every request passes through (local development).
type Authenticator struct {
	keySet  jwk.Set
	enabled bool
	logger  *slog.Logger
}

func NewAuthenticator(ctx context.Context, jwksURL string, logger *slog.Logger) (*Authenticator, error) {
	if jwksURL == "" {
		logger.Warn("no JWKS URL configured, bearer token verification is disabled")
		return &Authenticator{enabled: false, logger: logger}, nil
	}

	keySet, err := jwk.Fetch(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", jwksURL, err)
	}

	return &Authenticator{
		keySet:  keySet,
		enabled: true,
		logger:  logger,
	}, nil
}

// RequireUser rejects requests without a valid bearer token and stores the
// token's subject and admin flag in the request context.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		parsed, err := jwt.Parse([]byte(token), jwt.WithKeySet(a.keySet), jwt.WithValidate(true))
		if err != nil {
			unauthorized(w, "invalid bearer token")
			return
		}

		subject, ok := parsed.Subject()
		if !ok || subject == "" {
			unauthorized(w, "token has no subject")
			return
		}

		isAdmin := false
		// optional claim; absence simply means a regular user
		_ = parsed.Get("is_admin", &isAdmin)

		ctx := context.WithValue(r.Context(), userIDKey, subject)
		ctx = context.WithValue(ctx, isAdminKey, isAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is RequireUser plus the admin claim.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.enabled && !IsAdmin(r.Context()) {
			unauthorized(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// UserID returns the verified token subject stored by RequireUser.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func IsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(isAdminKey).(bool)
	return isAdmin
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	util.JSONResponse(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"error":   message,
	})
}
