package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "comanda/pkg/errors"
	"comanda/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					reject(w, r, log,
						apperrors.Internal("Internal server error", fmt.Errorf("panic: %v", rec)),
						"Panic recovered",
						"error", rec,
						"stack", string(debug.Stack()),
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
