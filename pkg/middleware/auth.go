package middleware

import (
	"net/http"
	"strings"

	"playday/pkg/auth"
	apperrors "playday/pkg/errors"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
)

type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Authenticate resolves the bearer token into an Identity on the request
// context. Requests without a token pass through anonymously; a token that
// is malformed, expired or signed out is rejected.
func Authenticate(tokens TokenParser, revocations auth.RevocationStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			reject := func(message string, err error) {
				log.Warn("Rejected credentials",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"reason", message,
					"error", err,
				)
				if writeErr := httputil.WriteError(w, apperrors.Unauthorized(message)); writeErr != nil {
					log.Error("failed to write error response", "middleware", "Authenticate", "error", writeErr)
				}
			}

			id, err := tokens.Parse(raw)
			if err != nil {
				reject("Invalid or expired token", err)
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), id.TokenID)
			if err != nil {
				log.Error("Revocation lookup failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
				if writeErr := httputil.WriteError(w, apperrors.Unavailable("Authentication")); writeErr != nil {
					log.Error("failed to write error response", "middleware", "Authenticate", "error", writeErr)
				}
				return
			}
			if revoked {
				reject("Session has been signed out", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// a websocket handshake, so upgrades may carry the token as access_token.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

// RequireIdentity returns the caller or an Unauthorized error for anonymous requests.
func RequireIdentity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperrors.Unauthorized("Sign in required")
	}
	return id, nil
}
