package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// PresenceToucher records that a user was active.
type PresenceToucher interface {
	Touch(ctx context.Context, userID int64) error
}

// Presence touches the authenticated user's last-seen time before the
// handler runs. Failures are logged and never fail the request.
func Presence(p PresenceToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := GetUserIDFromContext(r.Context()); ok {
				if err := p.Touch(r.Context(), userID); err != nil {
					log.Warn().Str("component", "Presence").Int64("user", userID).Err(err).Msg("failed to update last seen")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
