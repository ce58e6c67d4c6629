package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsMiddleware(t *testing.T) {
	tests := []struct {
		name              string
		allowedOrigins    []string
		requestOrigin     string
		expectAllowOrigin string
		expectCredentials bool
	}{
		{
			name:              "allowed origin",
			allowedOrigins:    []string{"https://app.example.com", "https://other.example.com"},
			requestOrigin:     "https://app.example.com",
			expectAllowOrigin: "https://app.example.com",
			expectCredentials: true,
		},
		{
			name:              "disallowed origin",
			allowedOrigins:    []string{"https://app.example.com"},
			requestOrigin:     "https://evil.com",
			expectAllowOrigin: "",
		},
		{
			name:              "no origin header",
			allowedOrigins:    []string{"https://app.example.com"},
			requestOrigin:     "",
			expectAllowOrigin: "",
		},
		{
			name:              "empty allowed origins allows all",
			allowedOrigins:    nil,
			requestOrigin:     "https://app.example.com",
			expectAllowOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			corsHandler := NewCORSMiddleware(tt.allowedOrigins)(handler)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			w := httptest.NewRecorder()

			corsHandler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectAllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.expectCredentials {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight requests must not reach the handler")
	})

	corsHandler := NewCORSMiddleware(nil)(handler)

	req := httptest.NewRequest("OPTIONS", "/api/config", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	corsHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	wrapped := NewRecoverMiddleware("test")(handler)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}

func TestResponseWriterDelegator(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := wrapResponseWriter(rec)

	wrapped.WriteHeader(http.StatusTeapot)
	wrapped.WriteHeader(http.StatusOK) // second call is ignored
	n, err := wrapped.Write([]byte("hello"))

	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusTeapot, wrapped.Status())
	assert.Equal(t, 5, wrapped.BytesWritten())
}
