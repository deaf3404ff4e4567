package middleware

import (
	"net/http"

	"golfbag-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDHeader carries the verified user identity set by the upstream
// identity gateway. Authentication itself happens there, not here.
const UserIDHeader = "X-User-ID"

// Identity extracts the verified user id and attaches it to the request
// context. Requests without a valid id are rejected.
func Identity(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				log.Warn("Rejected request with malformed user id",
					zap.String("path", r.URL.Path),
					zap.String("user_id", raw),
				)
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
