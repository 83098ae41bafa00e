package middleware

import (
	"crypto/subtle"
	"net/http"

	"prepwise/internal/utils"
)

const VapiSecretHeader = "X-Vapi-Secret"

// VapiSecret checks the shared secret the voice platform sends on tool callbacks.
// An empty secret disables the check.
func VapiSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(VapiSecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				utils.JSONError(w, http.StatusUnauthorized, "invalid callback secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
