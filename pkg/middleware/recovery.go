package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "playday/pkg/errors"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("Panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if err := httputil.WriteError(w, apperrors.Internal("Internal server error", nil)); err != nil {
					log.Error("failed to write error response", "middleware", "Recovery", "error", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
