package middleware

import (
	"net/http"

	apperrors "comanda/pkg/errors"
	httputil "comanda/pkg/http"
	"comanda/pkg/logger"
)

// reject logs reason and answers with appErr in the same envelope handlers use.
func reject(w http.ResponseWriter, r *http.Request, log *logger.Logger, appErr *apperrors.AppError, reason string, args ...any) {
	attrs := append([]any{
		"request_id", RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", appErr.StatusCode(),
	}, args...)
	log.Warn(reason, attrs...)

	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response", "operation", "WriteError", "error", err)
	}
}
