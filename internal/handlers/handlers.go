package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"prepwise/internal/apperr"
	"prepwise/internal/utils"
)

// requestID reuses chi's request id when the router set one.
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// writeAppError renders err as {success:false, error}. Only the message of an
// *apperr.Error reaches the client; the wrapped cause stays in the logs.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		utils.JSONError(w, apperr.StatusOf(err), appErr.Message)
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, err.Error())
}
