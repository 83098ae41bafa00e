package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrEmailExists        = errors.New("identity: email already exists")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
	ErrInvalidToken       = errors.New("identity: invalid or revoked token")
)

// Credential is what a successful sign-up or sign-in yields.
type Credential struct {
	UID     string
	Email   string
	IDToken string
}

type UserRecord struct {
	UID   string
	Email string
}

// Admin is the server-side half of the identity provider.
type Admin interface {
	// SessionCookie exchanges a fresh id token for a session cookie valid for expiresIn.
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	// VerifySessionCookie returns the uid, checking revocation.
	VerifySessionCookie(ctx context.Context, cookie string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// Client mints credentials from email and password, the way a browser SDK would.
type Client interface {
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
}

type Provider interface {
	Admin
	Client
	Name() string
}
