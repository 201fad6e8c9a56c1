package middleware

import (
	"net/http"
	"runtime/debug"

	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"
)

// NewRecovery returns a middleware that turns panics into 500 responses.
func NewRecovery(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					RequestLogger(r.Context(), log).Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, apierror.InternalError("internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
