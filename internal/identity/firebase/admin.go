package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"prepwise/internal/config"
	"prepwise/internal/identity"
)

var (
	authClient *auth.Client
	authErr    error
	authOnce   sync.Once
)

// AuthClient initializes the admin SDK at most once per process.
func AuthClient(ctx context.Context, cfg config.FirebaseConfig) (*auth.Client, error) {
	authOnce.Do(func() {
		authClient, authErr = newAuthClient(ctx, cfg)
	})
	return authClient, authErr
}

func newAuthClient(ctx context.Context, cfg config.FirebaseConfig) (*auth.Client, error) {
	creds, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}
	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return client, nil
}

func serviceAccountJSON(cfg config.FirebaseConfig) ([]byte, error) {
	if cfg.ProjectID == "" || cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, errors.New("firebase service account is incomplete")
	}
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  cfg.PrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}

// adminAuth is the subset of *auth.Client the provider calls.
type adminAuth interface {
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Provider pairs the admin SDK with the Identity Toolkit REST API.
type Provider struct {
	admin adminAuth
	*RESTClient
}

func NewProvider(admin adminAuth, rest *RESTClient) *Provider {
	return &Provider{admin: admin, RESTClient: rest}
}

func (p *Provider) Name() string { return "firebase" }

func (p *Provider) SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	return p.admin.SessionCookie(ctx, idToken, expiresIn)
}

func (p *Provider) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	token, err := p.admin.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}
	return token.UID, nil
}

func (p *Provider) GetUserByEmail(ctx context.Context, email string) (*identity.UserRecord, error) {
	rec, err := p.admin.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &identity.UserRecord{UID: rec.UID, Email: rec.Email}, nil
}

func (p *Provider) RevokeSessions(ctx context.Context, uid string) error {
	return p.admin.RevokeRefreshTokens(ctx, uid)
}
