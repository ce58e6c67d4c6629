package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityTestServer(t *testing.T, status int, body any) (*IdentityClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	client := NewIdentityClient("test-key")
	client.baseURL = srv.URL
	return client, srv
}

func identityError(message string) any {
	return map[string]any{
		"error": map[string]any{"code": 400, "message": message},
	}
}

func TestSignInWithPassword_Success(t *testing.T) {
	client, _ := newIdentityTestServer(t, http.StatusOK, map[string]any{
		"localId":      "uid-123",
		"email":        "user@example.com",
		"displayName":  "Demo User",
		"idToken":      "id-token",
		"refreshToken": "refresh-token",
		"expiresIn":    "3600",
	})

	result, err := client.SignInWithPassword(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "uid-123", result.User.ID)
	assert.Equal(t, "user@example.com", result.User.Email)
	assert.Equal(t, "password", result.User.ProviderID)
	assert.Equal(t, "id-token", result.IDToken)
	assert.Equal(t, float64(3600), result.ExpiresIn.Seconds())
}

func TestSignInWithPassword_ErrorCodes(t *testing.T) {
	tests := []struct {
		apiMessage string
		wantCode   string
	}{
		{"EMAIL_NOT_FOUND", CodeUserNotFound},
		{"INVALID_PASSWORD", CodeWrongPassword},
		{"INVALID_EMAIL", CodeInvalidEmail},
		{"INVALID_LOGIN_CREDENTIALS", CodeInvalidCredential},
		{"USER_DISABLED", CodeUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", "too-many-attempts-try-later"},
	}

	for _, tt := range tests {
		t.Run(tt.apiMessage, func(t *testing.T) {
			client, _ := newIdentityTestServer(t, http.StatusBadRequest, identityError(tt.apiMessage))

			_, err := client.SignInWithPassword(context.Background(), "user@example.com", "nope")
			credErr := AsCredentialError(err)
			require.NotNil(t, credErr, "expected a CredentialError, got %v", err)
			assert.Equal(t, tt.wantCode, credErr.Code)
		})
	}
}

func TestSignUpWithPassword_ErrorCodes(t *testing.T) {
	tests := []struct {
		apiMessage string
		wantCode   string
	}{
		{"EMAIL_EXISTS", CodeEmailAlreadyInUse},
		{"WEAK_PASSWORD : Password should be at least 6 characters", CodeWeakPassword},
		{"INVALID_EMAIL", CodeInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.apiMessage, func(t *testing.T) {
			client, _ := newIdentityTestServer(t, http.StatusBadRequest, identityError(tt.apiMessage))

			_, err := client.SignUpWithPassword(context.Background(), "user@example.com", "123")
			credErr := AsCredentialError(err)
			require.NotNil(t, credErr)
			assert.Equal(t, tt.wantCode, credErr.Code)
		})
	}
}

func TestNormalizeIdentityCode(t *testing.T) {
	assert.Equal(t, CodeWeakPassword, normalizeIdentityCode("WEAK_PASSWORD : too short"))
	assert.Equal(t, CodeUserNotFound, normalizeIdentityCode("EMAIL_NOT_FOUND"))
	assert.Equal(t, "operation-not-allowed", normalizeIdentityCode("OPERATION_NOT_ALLOWED"))
}
