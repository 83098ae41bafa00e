package local

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"prepwise/internal/identity"
)

const (
	accountPrefix = "prepwise:identity:account:"
	revokedPrefix = "prepwise:identity:revoked:"

	idTokenTTL    = time.Hour
	maxSessionTTL = 14 * 24 * time.Hour

	kindID      = "id"
	kindSession = "session"
)

// createAccount claims the email and stores the credentials in one step, so an
// account never exists without its password hash. Returns 0 when taken.
var createAccount = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], 'uid', ARGV[1]) == 0 then
    return 0
end
redis.call('HSET', KEYS[1], 'email', ARGV[2], 'hash', ARGV[3])
return 1
`)

// Provider emulates the hosted identity service: accounts live in Redis hashes
// keyed by email, and tokens are HS256 JWTs.
type Provider struct {
	rdb    *redis.Client
	secret []byte
	issuer string
	now    func() time.Time
}

type claims struct {
	Email    string `json:"email,omitempty"`
	Kind     string `json:"typ"`
	IssuedMs int64  `json:"iat_ms"`
	jwt.RegisteredClaims
}

func New(rdb *redis.Client, secret, issuer string) (*Provider, error) {
	if rdb == nil {
		return nil, errors.New("local identity: redis client required")
	}
	if secret == "" {
		return nil, errors.New("local identity: LOCAL_AUTH_JWT_SECRET is required")
	}
	if issuer == "" {
		issuer = "prepwise-local"
	}
	return &Provider{rdb: rdb, secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (p *Provider) Name() string { return "local" }

func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uid := uuid.NewString()
	created, err := createAccount.Run(ctx, p.rdb, []string{accountPrefix + email}, uid, email, string(hash)).Int()
	if err != nil {
		return nil, err
	}
	if created == 0 {
		return nil, identity.ErrEmailExists
	}

	token, err := p.sign(uid, email, kindID, idTokenTTL)
	if err != nil {
		return nil, err
	}
	return &identity.Credential{UID: uid, Email: email, IDToken: token}, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acct, err := p.rdb.HGetAll(ctx, accountPrefix+email).Result()
	if err != nil {
		return nil, err
	}
	if acct["uid"] == "" {
		return nil, identity.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct["hash"]), []byte(password)) != nil {
		return nil, identity.ErrInvalidCredentials
	}

	token, err := p.sign(acct["uid"], email, kindID, idTokenTTL)
	if err != nil {
		return nil, err
	}
	return &identity.Credential{UID: acct["uid"], Email: email, IDToken: token}, nil
}

func (p *Provider) SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 || expiresIn > maxSessionTTL {
		return "", fmt.Errorf("session duration out of range: %s", expiresIn)
	}
	c, err := p.parse(idToken, kindID)
	if err != nil {
		return "", err
	}
	return p.sign(c.Subject, c.Email, kindSession, expiresIn)
}

func (p *Provider) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	c, err := p.parse(cookie, kindSession)
	if err != nil {
		return "", err
	}

	revokedAt, err := p.rdb.Get(ctx, revokedPrefix+c.Subject).Result()
	if errors.Is(err, redis.Nil) {
		return c.Subject, nil
	}
	if err != nil {
		return "", err
	}
	cutoff, err := strconv.ParseInt(revokedAt, 10, 64)
	if err != nil {
		return "", fmt.Errorf("corrupt revocation marker: %w", err)
	}
	if c.IssuedMs <= cutoff {
		return "", identity.ErrInvalidToken
	}
	return c.Subject, nil
}

func (p *Provider) GetUserByEmail(ctx context.Context, email string) (*identity.UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uid, err := p.rdb.HGet(ctx, accountPrefix+email, "uid").Result()
	if errors.Is(err, redis.Nil) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &identity.UserRecord{UID: uid, Email: email}, nil
}

// RevokeSessions invalidates every session issued up to now. The marker outlives
// the longest possible session.
func (p *Provider) RevokeSessions(ctx context.Context, uid string) error {
	cutoff := strconv.FormatInt(p.now().UnixMilli(), 10)
	return p.rdb.Set(ctx, revokedPrefix+uid, cutoff, maxSessionTTL).Err()
}

func (p *Provider) sign(uid, email, kind string, ttl time.Duration) (string, error) {
	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:    email,
		Kind:     kind,
		IssuedMs: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(p.secret)
}

func (p *Provider) parse(raw, kind string) (*claims, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return p.secret, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !token.Valid {
		return nil, identity.ErrInvalidToken
	}
	if c.Kind != kind || c.Subject == "" {
		return nil, identity.ErrInvalidToken
	}
	return &c, nil
}
