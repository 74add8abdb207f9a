package middleware

import (
	"mime"
	"net/http"

	apperrors "playday/pkg/errors"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
)

func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresContentType(r) {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if mediaType != "application/json" {
				log.Warn("Invalid Content-Type header",
					"request_id", RequestIDFromContext(r.Context()),
					"content_type", mediaType,
					"path", r.URL.Path,
					"method", r.Method,
				)
				err := apperrors.New(apperrors.CodeInvalidInput, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				if writeErr := httputil.WriteError(w, err); writeErr != nil {
					log.Error("failed to write error response", "middleware", "ContentTypeValidation", "error", writeErr)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Bodyless writes such as join and signout are accepted without a content type.
func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	default:
		return false
	}
}
