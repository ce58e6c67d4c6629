package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleProvider_Type(t *testing.T) {
	provider := NewGoogleProvider("client-id", "client-secret", "https://example.com/callback")
	assert.Equal(t, "google", provider.Type())
}

func TestGoogleProvider_Configured(t *testing.T) {
	assert.True(t, NewGoogleProvider("client-id", "client-secret", "cb").Configured())
	assert.False(t, NewGoogleProvider("", "", "cb").Configured())
	assert.False(t, NewGoogleProvider("client-id", "", "cb").Configured())
}

func TestGoogleProvider_AuthURL(t *testing.T) {
	provider := NewGoogleProvider("client-id", "client-secret", "https://example.com/callback")

	authURL := provider.AuthURL("test-state")

	assert.Contains(t, authURL, "accounts.google.com")
	assert.Contains(t, authURL, "state=test-state")
	assert.Contains(t, authURL, "client_id=client-id")
	assert.Contains(t, authURL, "redirect_uri=")
	assert.Contains(t, authURL, "prompt=select_account")
}

func TestGoogleProvider_UserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(googleUserInfoResponse{
			Sub:           "12345",
			Email:         "user@example.com",
			VerifiedEmail: true,
			Name:          "Test User",
			Picture:       "https://example.com/photo.jpg",
		})
		require.NoError(t, err)
	}))
	defer server.Close()

	provider := &GoogleProvider{
		config: oauth2.Config{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			RedirectURL:  "https://example.com/callback",
		},
		userInfoURL: server.URL,
	}
	token := &oauth2.Token{AccessToken: "test-token"}

	userInfo, err := provider.UserInfo(context.Background(), token)

	require.NoError(t, err)
	require.NotNil(t, userInfo)
	assert.Equal(t, "google", userInfo.ProviderType)
	assert.Equal(t, "12345", userInfo.Subject)
	assert.Equal(t, "user@example.com", userInfo.Email)
	assert.True(t, userInfo.EmailVerified)
	assert.Equal(t, "Test User", userInfo.Name)
}

func TestGoogleProvider_UserInfo_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := &GoogleProvider{
		config: oauth2.Config{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
		},
		userInfoURL: server.URL,
	}
	token := &oauth2.Token{AccessToken: "test-token"}

	_, err := provider.UserInfo(context.Background(), token)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClassifyExchangeError(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantCode string
	}{
		{"redirect mismatch", `oauth2: "redirect_uri_mismatch"`, CodeUnauthorizedDomain},
		{"user declined", `oauth2: "access_denied"`, CodePopupClosedByUser},
		{"bad client", `oauth2: "invalid_client"`, CodeConfigurationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyExchangeError(errString(tt.message))
			fe := AsFederatedError(classified)
			require.NotNil(t, fe)
			assert.Equal(t, tt.wantCode, fe.Code)
		})
	}

	t.Run("unknown errors stay generic", func(t *testing.T) {
		classified := classifyExchangeError(errString("connection reset"))
		assert.Nil(t, AsFederatedError(classified))
	})
}

type errString string

func (e errString) Error() string { return string(e) }
