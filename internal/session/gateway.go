package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"prepwise/internal/identity"
	"prepwise/internal/models"
	storemongo "prepwise/internal/store/mongo"
)

const (
	CookieName = "session"
	Duration   = 7 * 24 * time.Hour
)

const (
	MsgUserExists     = "User already exists. Please sign in."
	MsgEmailInUse     = "This email is already in use"
	MsgSignUpFailed   = "Failed to create account. Please try again."
	MsgSignUpOK       = "Account created successfully. Please sign in."
	MsgUserNotFound   = "User does not exist. Create an account."
	MsgSignInFailed   = "Failed to log into account. Please try again."
	MsgSignInOK       = "Signed in successfully."
	MsgNotSignedIn    = "Not signed in."
	MsgSessionRevoked = "All sessions revoked."
)

// Reason tells callers why an operation failed so they can pick a status code.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonAlreadyExists Reason = "already_exists"
	ReasonEmailInUse    Reason = "email_in_use"
	ReasonNotFound      Reason = "not_found"
	ReasonUnauthorized  Reason = "unauthorized"
	ReasonFailed        Reason = "failed"
)

type Result struct {
	models.AuthResult
	Reason Reason
}

func ok(message string) *Result {
	return &Result{AuthResult: models.AuthResult{Success: true, Message: message}, Reason: ReasonOK}
}

func fail(reason Reason, message string) *Result {
	return &Result{AuthResult: models.AuthResult{Success: false, Message: message}, Reason: reason}
}

// UserStore is the user directory as the gateway sees it.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type SignUpParams struct {
	UID   string
	Name  string
	Email string
}

type SignInParams struct {
	Email   string
	IDToken string
}

// Gateway owns the session cookie and the sign-up/sign-in bookkeeping around
// the identity provider.
type Gateway struct {
	idp          identity.Admin
	users        UserStore
	secureCookie bool
	logger       *zap.Logger
}

func NewGateway(idp identity.Admin, users UserStore, secureCookie bool, logger *zap.Logger) *Gateway {
	return &Gateway{idp: idp, users: users, secureCookie: secureCookie, logger: logger}
}

// SignUp records a new user. It reports every outcome through the result.
func (g *Gateway) SignUp(ctx context.Context, p SignUpParams) *Result {
	_, err := g.users.GetByID(ctx, p.UID)
	if err == nil {
		return fail(ReasonAlreadyExists, MsgUserExists)
	}
	if !errors.Is(err, storemongo.ErrUserNotFound) {
		g.logger.Error("Failed to look up user", zap.String("uid", p.UID), zap.Error(err))
		return fail(ReasonFailed, MsgSignUpFailed)
	}

	rec, err := g.idp.GetUserByEmail(ctx, p.Email)
	switch {
	case err == nil && rec.UID != p.UID:
		return fail(ReasonEmailInUse, MsgEmailInUse)
	case err != nil && !errors.Is(err, identity.ErrUserNotFound):
		g.logger.Warn("Identity lookup failed during sign-up", zap.String("uid", p.UID), zap.Error(err))
	}

	err = g.users.Create(ctx, &models.User{ID: p.UID, Name: p.Name, Email: p.Email})
	switch {
	case err == nil:
		g.logger.Info("User created", zap.String("uid", p.UID))
		return ok(MsgSignUpOK)
	case errors.Is(err, storemongo.ErrEmailTaken):
		return fail(ReasonEmailInUse, MsgEmailInUse)
	case errors.Is(err, storemongo.ErrUserExists):
		return fail(ReasonAlreadyExists, MsgUserExists)
	default:
		g.logger.Error("Failed to create user", zap.String("uid", p.UID), zap.Error(err))
		return fail(ReasonFailed, MsgSignUpFailed)
	}
}

// SignIn exchanges the id token for a session cookie and sets it on w.
func (g *Gateway) SignIn(ctx context.Context, w http.ResponseWriter, p SignInParams) *Result {
	if _, err := g.idp.GetUserByEmail(ctx, p.Email); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return fail(ReasonNotFound, MsgUserNotFound)
		}
		g.logger.Error("Identity lookup failed during sign-in", zap.Error(err))
		return fail(ReasonFailed, MsgSignInFailed)
	}

	cookie, err := g.idp.SessionCookie(ctx, p.IDToken, Duration)
	if err != nil {
		g.logger.Warn("Failed to create session cookie", zap.Error(err))
		return fail(ReasonFailed, MsgSignInFailed)
	}

	http.SetCookie(w, g.cookie(cookie, int(Duration/time.Second)))
	return ok(MsgSignInOK)
}

// SignOut clears the cookie whether or not one was set.
func (g *Gateway) SignOut(w http.ResponseWriter) {
	c := g.cookie("", -1)
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// CurrentUser returns nil for any missing, invalid, revoked or orphaned session.
func (g *Gateway) CurrentUser(ctx context.Context, r *http.Request) *models.User {
	uid, err := g.currentUID(ctx, r)
	if err != nil {
		return nil
	}

	user, err := g.users.GetByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, storemongo.ErrUserNotFound) {
			g.logger.Warn("Failed to load session user", zap.String("uid", uid), zap.Error(err))
		}
		return nil
	}
	return user
}

func (g *Gateway) IsAuthenticated(ctx context.Context, r *http.Request) bool {
	return g.CurrentUser(ctx, r) != nil
}

// RevokeAll revokes every session of the caller at the provider and clears the cookie.
func (g *Gateway) RevokeAll(ctx context.Context, w http.ResponseWriter, r *http.Request) *Result {
	uid, err := g.currentUID(ctx, r)
	if err != nil {
		return fail(ReasonUnauthorized, MsgNotSignedIn)
	}
	if err := g.idp.RevokeSessions(ctx, uid); err != nil {
		g.logger.Error("Failed to revoke sessions", zap.String("uid", uid), zap.Error(err))
		return fail(ReasonFailed, "Failed to revoke sessions. Please try again.")
	}
	g.SignOut(w)
	g.logger.Info("Sessions revoked", zap.String("uid", uid))
	return ok(MsgSessionRevoked)
}

func (g *Gateway) currentUID(ctx context.Context, r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", http.ErrNoCookie
	}
	uid, err := g.idp.VerifySessionCookie(ctx, c.Value)
	if err != nil {
		g.logger.Debug("Session verification failed", zap.Error(err))
		return "", err
	}
	return uid, nil
}

func (g *Gateway) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
