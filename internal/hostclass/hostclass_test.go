package hostclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPreview(t *testing.T) {
	tests := []struct {
		host    string
		preview bool
	}{
		{"preview-123.vercel.app", true},
		{"myapp.netlify.app", true},
		{"user.github.io", true},
		{"demo.vusercontent.net", true},
		{"vercel.app", true},
		{"example.com", true}, // not loopback, treated as preview
		{"app.mycompany.dev:3000", true},
		{"localhost", false},
		{"localhost:3000", false},
		{"127.0.0.1", false},
		{"127.0.0.1:8080", false},
		{"[::1]:8080", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.preview, IsPreview(tt.host))
		})
	}
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("localhost"))
	assert.True(t, IsLoopback("127.0.0.1"))
	assert.True(t, IsLoopback("[::1]:443"))
	assert.False(t, IsLoopback("example.com"))
	assert.False(t, IsLoopback("10.0.0.1"))
}
