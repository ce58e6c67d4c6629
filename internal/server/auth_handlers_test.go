package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/dgellow/firebase-front/internal/backend"
	"github.com/dgellow/firebase-front/internal/cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, resp http.Header) *http.Cookie {
	t.Helper()
	parsed := (&http.Response{Header: resp}).Cookies()
	for _, c := range parsed {
		if c.Name == cookie.SessionCookie && c.Value != "" {
			return c
		}
	}
	return nil
}

func TestSignIn_Success(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "user@example.com",
		"password": "hunter22",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "/dashboard", body["redirect"])

	c := sessionCookie(t, rec.Header())
	require.NotNil(t, c, "successful sign-in must establish a session cookie")

	// The cookie authenticates subsequent requests
	me := ts.do(t, http.MethodGet, "/api/auth/me", nil, c)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "user@example.com", decodeBody(t, me)["email"])
}

func TestSignIn_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.creds.signInErr = &backend.CredentialError{Code: backend.CodeWrongPassword}

	rec := ts.do(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "user@example.com",
		"password": "bad",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password. Please try again."}`, rec.Body.String())
	assert.Nil(t, sessionCookie(t, rec.Header()))
}

func TestSignUp_WeakPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.creds.signUpErr = &backend.CredentialError{Code: backend.CodeWeakPassword}

	rec := ts.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "user@example.com",
		"password": "123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Password is too weak. Please use a stronger password."}`, rec.Body.String())
}

func TestSignIn_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/signin", []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleSignIn_FallsBackToRedirect(t *testing.T) {
	ts := newTestServer(t)

	// The test authenticator has no popup surface, so the popup attempt
	// reports popup-blocked and the controller stages a redirect.
	rec := ts.do(t, http.MethodPost, "/api/auth/google", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	redirect, _ := body["redirect"].(string)
	require.NotEmpty(t, redirect)
	assert.Contains(t, redirect, "https://idp.example.com/authorize")
}

func TestGoogleCallback_CompletesOnRedirectView(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/google", nil)
	redirect := decodeBody(t, rec)["redirect"].(string)

	authURL, err := url.Parse(redirect)
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	// Provider calls back with code and state
	cb := ts.do(t, http.MethodGet, "/auth/google/callback?code=auth-code&state="+url.QueryEscape(state), nil)
	assert.Equal(t, http.StatusFound, cb.Code)
	assert.Equal(t, "/auth/redirect", cb.Header().Get("Location"))

	// The completion view resolves the staged callback into a session
	page := ts.do(t, http.MethodGet, "/auth/redirect", nil)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Sign In Successful")
	require.NotNil(t, sessionCookie(t, page.Header()))

	current := ts.hub.Current()
	require.NotNil(t, current)
	assert.Equal(t, "g@example.com", current.Email)
}

func TestGoogleCallback_MissingParams(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/auth/google/callback", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedirectPage_NothingPending(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/auth/redirect", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSignOut_ClearsSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    "user@example.com",
		"password": "hunter22",
	})
	c := sessionCookie(t, rec.Header())
	require.NotNil(t, c)

	out := ts.do(t, http.MethodPost, "/api/auth/signout", nil, c)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Nil(t, ts.hub.Current())

	cleared := sessionCookie(t, out.Header())
	assert.Nil(t, cleared, "signout must not issue a fresh session cookie")
}

func TestMe_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTamperedSessionCookieIsRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/auth/me", nil, &http.Cookie{
		Name:  cookie.SessionCookie,
		Value: "forged-value",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
