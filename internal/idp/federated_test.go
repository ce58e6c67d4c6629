package idp

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var testSigningKey = []byte("test-signing-key-32-bytes-long!!")

// fakeProvider avoids real OAuth round trips in authenticator tests
type fakeProvider struct {
	configured  bool
	exchangeErr error
	userInfoErr error
	user        UserInfo

	exchangedCode string
}

func (f *fakeProvider) Type() string     { return "google" }
func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) AuthURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	f.exchangedCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-token"}, nil
}

func (f *fakeProvider) UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	if f.userInfoErr != nil {
		return nil, f.userInfoErr
	}
	info := f.user
	return &info, nil
}

type fakeOpener struct {
	code string
	err  error

	opened []string
}

func (f *fakeOpener) Open(ctx context.Context, authURL string) (string, error) {
	f.opened = append(f.opened, authURL)
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

func signedInProvider() *fakeProvider {
	return &fakeProvider{
		configured: true,
		user: UserInfo{
			ProviderType: "google",
			Subject:      "uid-google-1",
			Email:        "user@example.com",
			Name:         "Demo User",
			Picture:      "https://example.com/photo.jpg",
		},
	}
}

func TestSignInWithPopup_Success(t *testing.T) {
	provider := signedInProvider()
	opener := &fakeOpener{code: "auth-code"}
	auth := NewAuthenticator(provider, opener, testSigningKey)

	user, err := auth.SignInWithPopup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "uid-google-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "google.com", user.ProviderID)
	assert.Equal(t, "auth-code", provider.exchangedCode)
	require.Len(t, opener.opened, 1)
	assert.Contains(t, opener.opened[0], "state=")
}

func TestSignInWithPopup_NotConfigured(t *testing.T) {
	auth := NewAuthenticator(&fakeProvider{}, &fakeOpener{}, testSigningKey)

	_, err := auth.SignInWithPopup(context.Background())

	fe := AsFederatedError(err)
	require.NotNil(t, fe)
	assert.Equal(t, CodeConfigurationNotFound, fe.Code)
}

func TestSignInWithPopup_NoOpenerReportsBlocked(t *testing.T) {
	auth := NewAuthenticator(signedInProvider(), nil, testSigningKey)

	_, err := auth.SignInWithPopup(context.Background())

	fe := AsFederatedError(err)
	require.NotNil(t, fe)
	assert.Equal(t, CodePopupBlocked, fe.Code)
}

func TestSignInWithPopup_OpenerErrorsPassThrough(t *testing.T) {
	opener := &fakeOpener{err: &FederatedError{Code: CodePopupClosedByUser}}
	auth := NewAuthenticator(signedInProvider(), opener, testSigningKey)

	_, err := auth.SignInWithPopup(context.Background())

	fe := AsFederatedError(err)
	require.NotNil(t, fe)
	assert.Equal(t, CodePopupClosedByUser, fe.Code)
}

func TestSignInWithPopup_ExchangeErrorsPassThrough(t *testing.T) {
	provider := signedInProvider()
	provider.exchangeErr = &FederatedError{Code: CodeUnauthorizedDomain}
	auth := NewAuthenticator(provider, &fakeOpener{code: "auth-code"}, testSigningKey)

	_, err := auth.SignInWithPopup(context.Background())

	fe := AsFederatedError(err)
	require.NotNil(t, fe)
	assert.Equal(t, CodeUnauthorizedDomain, fe.Code)
}

func TestRedirectFlow_RoundTrip(t *testing.T) {
	provider := signedInProvider()
	auth := NewAuthenticator(provider, nil, testSigningKey)
	ctx := context.Background()

	require.NoError(t, auth.SignInWithRedirect(ctx))

	authURL := auth.ConsumeRedirectURL()
	require.NotEmpty(t, authURL)
	assert.Empty(t, auth.ConsumeRedirectURL(), "consume must clear the staged URL")

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	auth.StageCallback("redirect-code", state)

	user, err := auth.RedirectResult(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "uid-google-1", user.ID)
	assert.Equal(t, "redirect-code", provider.exchangedCode)
}

func TestRedirectResult_NothingPending(t *testing.T) {
	auth := NewAuthenticator(signedInProvider(), nil, testSigningKey)

	user, err := auth.RedirectResult(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user, "no pending redirect must be a neutral no-op")
}

func TestRedirectResult_TamperedState(t *testing.T) {
	provider := signedInProvider()
	auth := NewAuthenticator(provider, nil, testSigningKey)

	auth.StageCallback("redirect-code", "forged-state")

	_, err := auth.RedirectResult(context.Background())
	require.Error(t, err)
	assert.Empty(t, provider.exchangedCode, "tampered state must never reach the exchange")
}

func TestRedirectResult_ConsumesCallback(t *testing.T) {
	auth := NewAuthenticator(signedInProvider(), nil, testSigningKey)
	ctx := context.Background()

	auth.StageCallback("redirect-code", "forged-state")
	_, err := auth.RedirectResult(ctx)
	require.Error(t, err)

	user, err := auth.RedirectResult(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSignInWithRedirect_NotConfigured(t *testing.T) {
	auth := NewAuthenticator(&fakeProvider{}, nil, testSigningKey)

	err := auth.SignInWithRedirect(context.Background())

	fe := AsFederatedError(err)
	require.NotNil(t, fe)
	assert.Equal(t, CodeConfigurationNotFound, fe.Code)
}
