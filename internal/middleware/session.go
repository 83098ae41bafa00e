package middleware

import (
	"context"
	"net/http"

	"prepwise/internal/models"
	"prepwise/internal/session"
	"prepwise/internal/utils"
)

type CurrentUserFunc func(ctx context.Context, r *http.Request) *models.User

// RequireSession rejects requests without a valid session cookie and puts the
// user in the context otherwise.
func RequireSession(current CurrentUserFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := current(r.Context(), r)
			if user == nil {
				utils.JSONError(w, http.StatusUnauthorized, session.MsgNotSignedIn)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), user)))
		})
	}
}
