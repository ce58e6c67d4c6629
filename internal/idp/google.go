package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgellow/firebase-front/internal/ioutil"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProvider implements the Provider interface for Google OAuth.
// Google uses `verified_email` instead of the OIDC standard `email_verified`.
type GoogleProvider struct {
	config      oauth2.Config
	userInfoURL string
}

type googleUserInfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// NewGoogleProvider creates a new Google OAuth provider
func NewGoogleProvider(clientID, clientSecret, redirectURI string) *GoogleProvider {
	return &GoogleProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// Type returns the provider type
func (p *GoogleProvider) Type() string {
	return "google"
}

// Configured reports whether OAuth client credentials are present
func (p *GoogleProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL generates the authorization URL
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode exchanges an authorization code for tokens. Exchange
// rejections are mapped onto the federated error taxonomy where the OAuth
// error identifier has a known counterpart.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	return token, nil
}

// UserInfo fetches user information from Google's userinfo endpoint
func (p *GoogleProvider) UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := ioutil.ReadLimited(resp.Body, 1024)
		return nil, fmt.Errorf("failed to get user info: status %d: %s", resp.StatusCode, body)
	}

	var googleUser googleUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &UserInfo{
		ProviderType:  "google",
		Subject:       googleUser.Sub,
		Email:         googleUser.Email,
		EmailVerified: googleUser.VerifiedEmail,
		Name:          googleUser.Name,
		Picture:       googleUser.Picture,
	}, nil
}

func classifyExchangeError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "redirect_uri_mismatch"):
		return &FederatedError{Code: CodeUnauthorizedDomain, Message: "redirect URI is not authorized for this client"}
	case strings.Contains(msg, "access_denied"):
		return &FederatedError{Code: CodePopupClosedByUser, Message: "the user declined the consent screen"}
	case strings.Contains(msg, "invalid_client"):
		return &FederatedError{Code: CodeConfigurationNotFound, Message: "OAuth client is not configured"}
	default:
		return fmt.Errorf("failed to exchange code: %w", err)
	}
}
