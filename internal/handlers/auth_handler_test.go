package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepwise/internal/authform"
	"prepwise/internal/models"
	"prepwise/internal/session"
)

type mockForms struct {
	mode authform.Mode
	form authform.Form
}

func (m *mockForms) Submit(_ context.Context, w http.ResponseWriter, mode authform.Mode, form authform.Form) (int, models.AuthResult) {
	m.mode, m.form = mode, form
	if mode == authform.ModeSignIn {
		http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "cookie"})
		return http.StatusOK, models.AuthResult{Success: true, Message: session.MsgSignInOK, Redirect: "/"}
	}
	return http.StatusCreated, models.AuthResult{Success: true, Message: session.MsgSignUpOK, Redirect: "/sign-in"}
}

type mockSessions struct {
	signedOut bool
	revoke    *session.Result
}

func (m *mockSessions) SignOut(w http.ResponseWriter) {
	m.signedOut = true
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, MaxAge: -1})
}

func (m *mockSessions) RevokeAll(context.Context, http.ResponseWriter, *http.Request) *session.Result {
	return m.revoke
}

func TestSignUpHandler(t *testing.T) {
	forms := &mockForms{}
	h := NewAuthHandler(forms, &mockSessions{})

	rec := performRequest(http.HandlerFunc(h.SignUpHandler), http.MethodPost, "/api/auth/sign-up",
		`{"name":"Ada","email":"ada@example.com","password":"secret"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, authform.ModeSignUp, forms.mode)
	assert.Equal(t, "Ada", forms.form.Name)
	assert.Equal(t, "/sign-in", decodeBody(rec)["redirect"])
}

func TestSignInHandlerSetsCookie(t *testing.T) {
	forms := &mockForms{}
	h := NewAuthHandler(forms, &mockSessions{})

	rec := performRequest(http.HandlerFunc(h.SignInHandler), http.MethodPost, "/api/auth/sign-in",
		`{"email":"ada@example.com","password":"secret"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, authform.ModeSignIn, forms.mode)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, session.CookieName, rec.Result().Cookies()[0].Name)
}

func TestAuthHandlerInvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockForms{}, &mockSessions{})
	rec := performRequest(http.HandlerFunc(h.SignInHandler), http.MethodPost, "/api/auth/sign-in", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decodeBody(rec)["success"])
}

func TestSignOutHandler(t *testing.T) {
	sessions := &mockSessions{}
	h := NewAuthHandler(&mockForms{}, sessions)

	rec := performRequest(http.HandlerFunc(h.SignOutHandler), http.MethodPost, "/api/auth/sign-out", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sessions.signedOut)
}

func TestRevokeHandler(t *testing.T) {
	tests := []struct {
		reason session.Reason
		status int
	}{
		{session.ReasonOK, http.StatusOK},
		{session.ReasonUnauthorized, http.StatusUnauthorized},
		{session.ReasonFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		sessions := &mockSessions{revoke: &session.Result{Reason: tt.reason}}
		h := NewAuthHandler(&mockForms{}, sessions)

		rec := performRequest(http.HandlerFunc(h.RevokeHandler), http.MethodPost, "/api/auth/revoke", "")
		assert.Equal(t, tt.status, rec.Code, string(tt.reason))
	}
}

func TestMeHandler(t *testing.T) {
	h := NewAuthHandler(&mockForms{}, &mockSessions{})

	rec := httptest.NewRecorder()
	h.MeHandler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.MeHandler(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(rec)["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
}
