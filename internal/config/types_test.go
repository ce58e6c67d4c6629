package config

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret_Redaction(t *testing.T) {
	s := Secret("super-secret-value")
	assert.Equal(t, "***", s.String())
	assert.Equal(t, "***", fmt.Sprintf("%v", s))

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"***"}`, string(data))
}

func TestSecret_EmptyStaysEmpty(t *testing.T) {
	var s Secret
	assert.Equal(t, "", s.String())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))
}

func TestProviderConfig_MissingRequiredFields(t *testing.T) {
	complete := ProviderConfig{APIKey: "k", AuthDomain: "d", ProjectID: "p"}
	assert.Empty(t, complete.MissingRequiredFields())
	assert.True(t, complete.HasRequiredFields())

	empty := ProviderConfig{}
	assert.Equal(t, []string{"apiKey", "authDomain", "projectId"}, empty.MissingRequiredFields())
	assert.False(t, empty.HasRequiredFields())

	partial := ProviderConfig{APIKey: "k", StorageBucket: "b"}
	assert.Equal(t, []string{"authDomain", "projectId"}, partial.MissingRequiredFields())
}

func TestValidate(t *testing.T) {
	t.Run("requires addr and baseURL", func(t *testing.T) {
		err := Validate(&Config{})
		assert.ErrorContains(t, err, "server.addr")

		err = Validate(&Config{Server: ServerConfig{Addr: ":8080"}})
		assert.ErrorContains(t, err, "server.baseURL")
	})

	t.Run("defaults to memory storage", func(t *testing.T) {
		cfg := Config{Server: ServerConfig{Addr: ":8080", BaseURL: "http://localhost:8080"}}
		require.NoError(t, Validate(&cfg))
		assert.Equal(t, StorageKindMemory, cfg.Storage)
	})

	t.Run("firestore storage requires project", func(t *testing.T) {
		cfg := Config{
			Server:  ServerConfig{Addr: ":8080", BaseURL: "http://localhost:8080"},
			Storage: StorageKindFirestore,
		}
		assert.ErrorContains(t, Validate(&cfg), "projectId")

		cfg.Provider.ProjectID = "demo-project"
		assert.NoError(t, Validate(&cfg))
	})

	t.Run("federated sign-in requires signing key", func(t *testing.T) {
		cfg := Config{
			Server: ServerConfig{
				Addr:           ":8080",
				BaseURL:        "http://localhost:8080",
				GoogleClientID: "client-id.apps.googleusercontent.com",
			},
		}
		assert.ErrorContains(t, Validate(&cfg), "signingKey")

		cfg.Server.SigningKey = "0123456789abcdef"
		assert.NoError(t, Validate(&cfg))
	})
}
