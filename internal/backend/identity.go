package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/session"
)

const defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"

// IdentityClient talks to the provider's identity REST API for credential
// sign-in and sign-up. The admin SDK has no password grant, so these calls
// are keyed by the web API key like the provider's own client SDKs.
type IdentityClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewIdentityClient creates an identity client for the given API key
func NewIdentityClient(apiKey string) *IdentityClient {
	return &IdentityClient{
		apiKey:     apiKey,
		baseURL:    defaultIdentityBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SignInResult carries the signed-in user snapshot and the provider tokens
type SignInResult struct {
	User         *session.User
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

type credentialRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword authenticates an email/password pair. Failures are
// returned as *CredentialError subdivided by the provider's error code.
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	return c.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

// SignUpWithPassword creates a new email/password account
func (c *IdentityClient) SignUpWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	return c.credentialCall(ctx, "accounts:signUp", email, password)
}

func (c *IdentityClient) credentialCall(ctx context.Context, endpoint, email, password string) (*SignInResult, error) {
	body, err := json.Marshal(credentialRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling identity API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp identityErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("identity API returned status %d", resp.StatusCode)
		}

		code := normalizeIdentityCode(errResp.Error.Message)
		log.LogDebugWithFields("identity", "Credential call rejected", map[string]any{
			"endpoint": endpoint,
			"code":     code,
		})
		return nil, &CredentialError{Code: code, Message: errResp.Error.Message}
	}

	var cred credentialResponse
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, fmt.Errorf("decoding identity response: %w", err)
	}

	now := time.Now()
	result := &SignInResult{
		User: &session.User{
			ID:           cred.LocalID,
			Email:        cred.Email,
			DisplayName:  cred.DisplayName,
			CreatedAt:    now,
			LastSignInAt: now,
			ProviderID:   "password",
		},
		IDToken:      cred.IDToken,
		RefreshToken: cred.RefreshToken,
	}
	if secs, err := strconv.Atoi(cred.ExpiresIn); err == nil {
		result.ExpiresIn = time.Duration(secs) * time.Second
	}
	return result, nil
}

// normalizeIdentityCode maps the REST API's SHOUTY_SNAKE error identifiers
// onto the client SDK's kebab-case codes the rest of the app speaks.
func normalizeIdentityCode(message string) string {
	// Some identifiers carry a trailing explanation: "WEAK_PASSWORD : ..."
	identifier := message
	if i := strings.IndexAny(identifier, " :"); i >= 0 {
		identifier = identifier[:i]
	}

	switch identifier {
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD":
		return CodeWrongPassword
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return CodeInvalidEmail
	case "INVALID_LOGIN_CREDENTIALS":
		return CodeInvalidCredential
	case "EMAIL_EXISTS":
		return CodeEmailAlreadyInUse
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return CodeWeakPassword
	case "USER_DISABLED":
		return CodeUserDisabled
	default:
		return strings.ToLower(strings.ReplaceAll(identifier, "_", "-"))
	}
}
