// Package idp implements federated sign-in against a third-party identity
// provider, including the popup and redirect presentation flows and the
// error taxonomy the sign-in controller classifies on.
package idp

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Federated error codes, matching the backend client SDK's identifiers
const (
	CodeConfigurationNotFound = "configuration-not-found"
	CodeUnauthorizedDomain    = "unauthorized-domain"
	CodePopupClosedByUser     = "popup-closed-by-user"
	CodeCancelledPopupRequest = "cancelled-popup-request"
	CodePopupBlocked          = "popup-blocked"
)

// FederatedError reports a failed federated sign-in, subdivided by code.
// Errors without a recognized code are wrapped with an empty Code and
// classified as generic by callers.
type FederatedError struct {
	Code    string
	Message string
}

func (e *FederatedError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsFederatedError unwraps err into a FederatedError, or nil
func AsFederatedError(err error) *FederatedError {
	var fe *FederatedError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// UserInfo represents user information from an identity provider
type UserInfo struct {
	ProviderType  string `json:"provider_type"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Provider abstracts the identity provider's OAuth operations
type Provider interface {
	// Type returns the provider type identifier (e.g., "google")
	Type() string

	// Configured reports whether the provider has usable client credentials
	Configured() bool

	// AuthURL generates the authorization URL for the OAuth flow
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for tokens
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// UserInfo fetches user information for the token
	UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}
