package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"prepwise/internal/authform"
	"prepwise/internal/models"
	"prepwise/internal/session"
	"prepwise/internal/utils"
)

type FormSubmitter interface {
	Submit(ctx context.Context, w http.ResponseWriter, mode authform.Mode, form authform.Form) (int, models.AuthResult)
}

type SessionManager interface {
	SignOut(w http.ResponseWriter)
	RevokeAll(ctx context.Context, w http.ResponseWriter, r *http.Request) *session.Result
}

// AuthHandler exposes the auth form and session endpoints.
type AuthHandler struct {
	forms    FormSubmitter
	sessions SessionManager
}

func NewAuthHandler(forms FormSubmitter, sessions SessionManager) *AuthHandler {
	return &AuthHandler{forms: forms, sessions: sessions}
}

func (h *AuthHandler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, authform.ModeSignUp)
}

func (h *AuthHandler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, authform.ModeSignIn)
}

func (h *AuthHandler) submit(w http.ResponseWriter, r *http.Request, mode authform.Mode) {
	var form authform.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.AuthResult{Message: "Invalid JSON in request body"})
		return
	}
	status, result := h.forms.Submit(r.Context(), w, mode, form)
	utils.JSON(w, status, result)
}

func (h *AuthHandler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w)
	utils.JSON(w, http.StatusOK, models.AuthResult{Success: true, Message: "Signed out.", Redirect: "/sign-in"})
}

func (h *AuthHandler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	res := h.sessions.RevokeAll(r.Context(), w, r)
	status := http.StatusOK
	switch res.Reason {
	case session.ReasonOK:
	case session.ReasonUnauthorized:
		status = http.StatusUnauthorized
	default:
		status = http.StatusInternalServerError
	}
	utils.JSON(w, status, res.AuthResult)
}

// MeHandler runs behind RequireSession.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, session.MsgNotSignedIn)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}
