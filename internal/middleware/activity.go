package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

type activityRecorder interface {
	TouchLastActive(ctx context.Context, userID string) error
}

// ActivityMiddleware stamps the caller's last activity once the request has
// been handled. It must run after AuthMiddleware.
func ActivityMiddleware(users activityRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			userID := GetUserID(r.Context())
			if userID == "" {
				return
			}
			if err := users.TouchLastActive(context.WithoutCancel(r.Context()), userID); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update last activity")
			}
		})
	}
}
