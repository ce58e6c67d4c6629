package backend

import (
	"context"
	"testing"

	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/platform"
	"github.com/dgellow/firebase-front/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, defaults config.ProviderConfig) *config.Resolver {
	t.Helper()
	return config.NewResolver(defaults, storage.NewMemoryStore())
}

var usableConfig = config.ProviderConfig{
	APIKey:            "test-api-key",
	AuthDomain:        "demo.firebaseapp.com",
	ProjectID:         "demo-project",
	StorageBucket:     "demo-project.appspot.com",
	MessagingSenderID: "123456",
	AppID:             "1:123456:web:abcd",
	MeasurementID:     "G-DEMO",
}

func TestClient_Idempotent(t *testing.T) {
	ctx := context.Background()
	app := New(newTestResolver(t, usableConfig), &platform.Fixed{Document: true, Analytics: true})

	first, err := app.Client(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := app.Client(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second, "second bootstrap must return the existing instance")
}

func TestClient_MissingRequiredFields(t *testing.T) {
	ctx := context.Background()
	app := New(newTestResolver(t, config.ProviderConfig{APIKey: "only-key"}), &platform.Fixed{})

	_, err := app.Client(ctx)
	require.Error(t, err)

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.ElementsMatch(t, []string{"authDomain", "projectId"}, confErr.Missing)
}

func TestClient_DerivesPersistence(t *testing.T) {
	ctx := context.Background()
	app := New(newTestResolver(t, usableConfig), &platform.Fixed{})

	assert.Empty(t, app.Persistence())

	_, err := app.Client(ctx)
	require.NoError(t, err)
	assert.Equal(t, PersistenceLocal, app.Persistence())
}

func TestMessaging_UnavailableOutsideDocumentContext(t *testing.T) {
	ctx := context.Background()
	app := New(newTestResolver(t, usableConfig), &platform.Fixed{Document: false})

	_, err := app.Messaging(ctx)
	assert.ErrorIs(t, err, ErrMessagingUnavailable)
}

func TestAnalytics_ActivationGating(t *testing.T) {
	ctx := context.Background()

	t.Run("supported environment", func(t *testing.T) {
		app := New(newTestResolver(t, usableConfig), &platform.Fixed{Document: true, Analytics: true})
		_, err := app.Client(ctx)
		require.NoError(t, err)

		analytics, err := app.Analytics(ctx)
		require.NoError(t, err)
		assert.True(t, analytics.Enabled())
	})

	t.Run("unsupported environment is a no-op", func(t *testing.T) {
		app := New(newTestResolver(t, usableConfig), &platform.Fixed{Document: true, Analytics: false})
		_, err := app.Client(ctx)
		require.NoError(t, err)

		analytics, err := app.Analytics(ctx)
		require.NoError(t, err)
		assert.False(t, analytics.Enabled())
	})

	t.Run("no document context skips activation", func(t *testing.T) {
		app := New(newTestResolver(t, usableConfig), &platform.Fixed{Document: false, Analytics: true})
		_, err := app.Client(ctx)
		require.NoError(t, err)

		analytics, err := app.Analytics(ctx)
		require.NoError(t, err)
		assert.False(t, analytics.Enabled())
	})
}
