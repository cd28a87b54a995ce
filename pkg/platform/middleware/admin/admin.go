// Package admin gates administrative endpoints behind a shared key. Only the
// bcrypt hash of the key is configured on the server; the plaintext travels in
// the X-Admin-Key header.
package admin

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	dErrors "schemegate/pkg/domain-errors"
	"schemegate/pkg/platform/httputil"
	"schemegate/pkg/requestcontext"
)

// RequireAdminKey verifies the X-Admin-Key header against the configured
// bcrypt hash. An empty hash disables the admin surface entirely.
func RequireAdminKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := r.Header.Get("X-Admin-Key")

			if keyHash == "" || key == "" ||
				bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
				logger.WarnContext(ctx, "admin key mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin key required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
