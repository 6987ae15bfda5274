package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/httputil"
	request "custodian/pkg/platform/middleware/request"
)

type contextKeyAdminActorID struct{}

// GetAdminActorID retrieves the admin actor identifier from the context.
// Returns empty string if not set.
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(contextKeyAdminActorID{}).(string); ok {
		return actorID
	}
	return ""
}

// WithAdminActorID returns a copy of ctx attributing work to actorID.
func WithAdminActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyAdminActorID{}, actorID)
}

// RequireAdminToken guards the admin surface with a shared token sent in
// X-Admin-Token. An empty expectedToken disables the guard. X-Admin-Actor-ID,
// when present, is kept in the context for audit attribution.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if expectedToken != "" {
				token := r.Header.Get("X-Admin-Token")
				if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
					logger.WarnContext(ctx, "admin token mismatch",
						"request_id", request.GetRequestID(ctx),
						"path", r.URL.Path,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
					return
				}
			}

			if actorID := r.Header.Get("X-Admin-Actor-ID"); actorID != "" {
				ctx = WithAdminActorID(ctx, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
