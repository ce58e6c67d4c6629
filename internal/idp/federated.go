package idp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgellow/firebase-front/internal/crypto"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/session"
)

// stateExpiry bounds how long a pending redirect flow stays completable
const stateExpiry = 10 * time.Minute

// PopupOpener presents an authorization URL in a blocking popup surface and
// returns the authorization code delivered to the redirect URI. Openers
// signal presentation failures as *FederatedError (popup-blocked,
// popup-closed-by-user, cancelled-popup-request).
type PopupOpener interface {
	Open(ctx context.Context, authURL string) (code string, err error)
}

// Authenticator drives the two federated sign-in presentations: a blocking
// popup and a full-page redirect whose result only becomes observable on
// the completion view after the round trip.
type Authenticator struct {
	provider Provider
	opener   PopupOpener
	signer   crypto.TokenSigner

	mu       sync.Mutex
	pending  string
	callback *stagedCallback
}

type stagedCallback struct {
	code  string
	state string
}

type redirectState struct {
	Nonce string `json:"nonce"`
}

// NewAuthenticator creates an authenticator for the provider. A nil opener
// means no popup surface exists; popup sign-in then reports popup-blocked
// and callers fall back to the redirect flow.
func NewAuthenticator(provider Provider, opener PopupOpener, signingKey []byte) *Authenticator {
	return &Authenticator{
		provider: provider,
		opener:   opener,
		signer:   crypto.NewTokenSigner(signingKey, stateExpiry),
	}
}

// SignInWithPopup runs the popup presentation end to end and returns the
// signed-in user.
func (a *Authenticator) SignInWithPopup(ctx context.Context) (*session.User, error) {
	if !a.provider.Configured() {
		return nil, &FederatedError{Code: CodeConfigurationNotFound, Message: "identity provider is not configured"}
	}
	if a.opener == nil {
		return nil, &FederatedError{Code: CodePopupBlocked, Message: "no popup surface is available"}
	}

	state, err := a.newState()
	if err != nil {
		return nil, err
	}

	code, err := a.opener.Open(ctx, a.provider.AuthURL(state))
	if err != nil {
		if fe := AsFederatedError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("popup sign-in failed: %w", err)
	}

	return a.complete(ctx, code)
}

// SignInWithRedirect prepares the redirect presentation. The authorization
// URL is staged for the HTTP layer to issue as a 302; the result is only
// observable later via RedirectResult.
func (a *Authenticator) SignInWithRedirect(ctx context.Context) error {
	if !a.provider.Configured() {
		return &FederatedError{Code: CodeConfigurationNotFound, Message: "identity provider is not configured"}
	}

	state, err := a.newState()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.pending = a.provider.AuthURL(state)
	a.mu.Unlock()

	log.LogDebugWithFields("idp", "Redirect sign-in staged", map[string]any{
		"provider": a.provider.Type(),
	})
	return nil
}

// ConsumeRedirectURL returns the staged authorization URL and clears it.
// Empty when no redirect is pending.
func (a *Authenticator) ConsumeRedirectURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	url := a.pending
	a.pending = ""
	return url
}

// StageCallback records the code and state delivered to the redirect URI.
// The completion view picks them up through RedirectResult.
func (a *Authenticator) StageCallback(code, state string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = &stagedCallback{code: code, state: state}
}

// RedirectResult completes a pending redirect flow. Returns (nil, nil) when
// no redirect was pending, matching the backend SDK's getRedirectResult.
func (a *Authenticator) RedirectResult(ctx context.Context) (*session.User, error) {
	a.mu.Lock()
	cb := a.callback
	a.callback = nil
	a.mu.Unlock()

	if cb == nil {
		return nil, nil
	}

	var st redirectState
	if err := a.signer.Verify(cb.state, &st); err != nil {
		return nil, fmt.Errorf("invalid redirect state: %w", err)
	}

	return a.complete(ctx, cb.code)
}

func (a *Authenticator) complete(ctx context.Context, code string) (*session.User, error) {
	token, err := a.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	info, err := a.provider.UserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &session.User{
		ID:           info.Subject,
		Email:        info.Email,
		DisplayName:  info.Name,
		PhotoURL:     info.Picture,
		CreatedAt:    now,
		LastSignInAt: now,
		ProviderID:   info.ProviderType + ".com",
	}, nil
}

func (a *Authenticator) newState() (string, error) {
	nonce, err := crypto.GenerateSecureToken()
	if err != nil {
		return "", err
	}
	state, err := a.signer.Sign(redirectState{Nonce: nonce})
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return state, nil
}
