// Package backend owns the single backend provider client and the handles
// derived from it. Construction is explicit and app-scoped: the App is built
// once at startup and passed to whatever needs it, never fetched through
// global lookup.
package backend

import (
	"context"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/platform"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/option"
)

// Persistence is the auth-state persistence policy derived at bootstrap
type Persistence string

const (
	// PersistenceLocal keeps auth state across browser restarts
	PersistenceLocal Persistence = "local"
)

// App holds the lazily-constructed backend client and its derived handles.
// Client is idempotent: concurrent and repeated calls all observe the same
// underlying instance.
type App struct {
	resolver *config.Resolver
	caps     platform.Capabilities
	opts     []option.ClientOption

	group singleflight.Group

	mu          sync.RWMutex
	client      *firebase.App
	persistence Persistence
	analytics   *Analytics
}

// New creates an App over the given resolver and capabilities. Client
// options carry service account credentials when configured.
func New(resolver *config.Resolver, caps platform.Capabilities, opts ...option.ClientOption) *App {
	return &App{
		resolver: resolver,
		caps:     caps,
		opts:     opts,
	}
}

// Client returns the backend client, constructing it on first use. Returns
// *ConfigurationError when required config fields are missing and
// *BootstrapError when the provider client cannot be constructed.
func (a *App) Client(ctx context.Context) (*firebase.App, error) {
	a.mu.RLock()
	client := a.client
	a.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	v, err, _ := a.group.Do("client", func() (any, error) {
		a.mu.RLock()
		existing := a.client
		a.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		cfg := a.resolver.Resolve(ctx)
		if missing := cfg.MissingRequiredFields(); len(missing) > 0 {
			return nil, &ConfigurationError{Missing: missing}
		}

		fbApp, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID:     cfg.ProjectID,
			StorageBucket: cfg.StorageBucket,
		}, a.opts...)
		if err != nil {
			return nil, &BootstrapError{Err: err}
		}

		a.mu.Lock()
		a.client = fbApp
		a.mu.Unlock()

		log.LogInfoWithFields("backend", "Backend client initialized", map[string]any{
			"project":    cfg.ProjectID,
			"authDomain": cfg.AuthDomain,
		})

		// Fire-and-forget: persistence derivation and analytics activation
		// are best-effort, never bootstrap failures.
		a.derivePersistence()
		if a.caps.HasDocument() {
			a.activateAnalytics(ctx, cfg)
		}

		return fbApp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*firebase.App), nil
}

// derivePersistence records the long-lived auth persistence policy. Failure
// is logged, not propagated.
func (a *App) derivePersistence() {
	a.mu.Lock()
	a.persistence = PersistenceLocal
	a.mu.Unlock()

	log.LogDebugWithFields("backend", "Auth persistence set", map[string]any{
		"policy": string(PersistenceLocal),
	})
}

// Persistence returns the derived auth persistence policy
func (a *App) Persistence() Persistence {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.persistence
}

// activateAnalytics enables the analytics handle when the environment
// supports it. Absence of support is a no-op, not an error.
func (a *App) activateAnalytics(ctx context.Context, cfg config.ProviderConfig) {
	supported, err := a.caps.SupportsAnalytics(ctx)
	if err != nil {
		log.LogWarnWithFields("backend", "Analytics support check failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !supported || cfg.MeasurementID == "" {
		a.analytics = &Analytics{}
		log.LogDebug("Analytics not supported in this environment")
		return
	}

	a.analytics = &Analytics{enabled: true, measurementID: cfg.MeasurementID}
	log.LogInfoWithFields("backend", "Analytics activated", map[string]any{
		"measurementId": cfg.MeasurementID,
	})
}

// Auth returns the derived auth handle
func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	client, err := a.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Auth(ctx)
}

// Messaging returns the derived messaging handle. Outside a document
// context it returns ErrMessagingUnavailable rather than failing bootstrap.
func (a *App) Messaging(ctx context.Context) (*messaging.Client, error) {
	if !a.caps.HasDocument() {
		return nil, ErrMessagingUnavailable
	}

	client, err := a.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Messaging(ctx)
}

// Analytics returns the analytics handle; disabled (no-op) until activation
// has run in a supported environment.
func (a *App) Analytics(ctx context.Context) (*Analytics, error) {
	if _, err := a.Client(ctx); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.analytics == nil {
		return &Analytics{}, nil
	}
	return a.analytics, nil
}

// Identity returns the identity REST client derived from the resolved
// config's API key.
func (a *App) Identity(ctx context.Context) (*IdentityClient, error) {
	if _, err := a.Client(ctx); err != nil {
		return nil, err
	}
	cfg := a.resolver.Resolve(ctx)
	return NewIdentityClient(cfg.APIKey), nil
}

// Registrations returns the push registration client derived from the
// resolved config.
func (a *App) Registrations(ctx context.Context) (*RegistrationClient, error) {
	if _, err := a.Client(ctx); err != nil {
		return nil, err
	}
	cfg := a.resolver.Resolve(ctx)
	return NewRegistrationClient(cfg.ProjectID, cfg.APIKey), nil
}
