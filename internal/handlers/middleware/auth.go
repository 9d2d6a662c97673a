package middleware

import (
	"net/http"
	"strings"

	"github.com/avelinsk/authgate/internal/handlers/claimsctx"
	"github.com/avelinsk/authgate/internal/handlers/render"
	"github.com/avelinsk/authgate/internal/service/auth/tokensigner"
)

// Strict parser only. The relaxed (expiry ignoring) mode must never be
// pluggable here, so the interface names exactly one method.
type accessParser interface {
	Parse(access string) (tokensigner.AccessClaims, error)
}

// AuthMiddleware authenticates requests by bearer token alone:
// signature and expiry, no storage lookup
func AuthMiddleware(parser accessParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := parser.Parse(access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := claimsctx.New(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only if the access token carries
// the given role claim. Run it after AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsctx.FromContext(r.Context())
			if !ok || claims.Role != role {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
