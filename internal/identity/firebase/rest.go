package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prepwise/internal/identity"
)

const defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// RESTClient mints credentials through the Identity Toolkit accounts API,
// which is what the browser SDK does under the hood.
type RESTClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewRESTClient(apiKey string) *RESTClient {
	return &RESTClient{
		BaseURL:    defaultIdentityToolkitURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type accountRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *RESTClient) SignUp(ctx context.Context, email, password string) (*identity.Credential, error) {
	return c.call(ctx, "accounts:signUp", email, password)
}

func (c *RESTClient) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	return c.call(ctx, "accounts:signInWithPassword", email, password)
}

func (c *RESTClient) call(ctx context.Context, method, email, password string) (*identity.Credential, error) {
	body, err := json.Marshal(accountRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?key=%s", strings.TrimRight(c.BaseURL, "/"), method, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var rerr restError
		_ = json.NewDecoder(resp.Body).Decode(&rerr)
		return nil, mapRESTError(resp.StatusCode, rerr.Error.Message)
	}

	var out accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if out.LocalID == "" {
		return nil, errors.New("identity toolkit returned no user id")
	}
	if out.Email == "" {
		out.Email = email
	}
	return &identity.Credential{UID: out.LocalID, Email: out.Email, IDToken: out.IDToken}, nil
}

// Identity Toolkit error messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
func mapRESTError(status int, message string) error {
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_EXISTS":
		return identity.ErrEmailExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return identity.ErrInvalidCredentials
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("identity toolkit error (%d): %s", status, message)
}
