package internal

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/dgellow/firebase-front/internal/backend"
	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/idp"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/platform"
	"github.com/dgellow/firebase-front/internal/push"
	"github.com/dgellow/firebase-front/internal/server"
	"github.com/dgellow/firebase-front/internal/session"
	"github.com/dgellow/firebase-front/internal/signin"
	"github.com/dgellow/firebase-front/internal/storage"
	"github.com/dgellow/firebase-front/internal/urlutil"
	"google.golang.org/api/option"
)

const (
	cleanupInterval    = 1 * time.Hour
	registrationMaxAge = 30 * 24 * time.Hour
)

// FirebaseFront represents the complete application
type FirebaseFront struct {
	config     config.Config
	httpServer *server.HTTPServer
	storage    storage.Store
	cleanup    *storage.CleanupManager
}

// NewFirebaseFront creates the application with all dependencies built
func NewFirebaseFront(ctx context.Context, cfg config.Config) (*FirebaseFront, error) {
	log.LogInfoWithFields("frontapp", "Building application", map[string]any{
		"baseURL": cfg.Server.BaseURL,
		"storage": string(cfg.Storage),
	})

	store, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}

	resolver := config.NewResolver(cfg.Provider, store)
	if err := resolver.Seed(ctx); err != nil {
		log.LogWarnWithFields("frontapp", "Failed to seed provider config", map[string]any{
			"error": err.Error(),
		})
	}

	// The client environment starts empty; each push enablement request
	// reports the browser's actual capabilities before the flow runs.
	caps := &platform.Fixed{}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app := backend.New(resolver, caps, clientOpts...)

	hub := session.NewHub()
	events := server.NewEvents()

	redirectURI, err := urlutil.JoinPath(cfg.Server.BaseURL, "/auth/google/callback")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	provider := idp.NewGoogleProvider(
		cfg.Server.GoogleClientID,
		string(cfg.Server.GoogleClientSecret),
		redirectURI,
	)
	// A server process has no popup surface, so popup attempts report
	// popup-blocked and the controller falls back to the redirect flow.
	authn := idp.NewAuthenticator(provider, nil, []byte(cfg.Server.SigningKey))

	controller := signin.NewController(signin.Config{
		Credentials: &credentialService{app: app},
		Federated:   authn,
		Sessions:    hub,
		Host:        hostOf(cfg.Server.BaseURL),
		Navigate:    events.PublishNavigate,
		Notify: func(toast signin.Toast) {
			events.PublishToast(toast.Title, toast.Description, toast.Destructive)
		},
	})

	bridge := push.NewBridge()
	flow := push.NewFlow(push.Config{
		Capabilities: caps,
		Tokens:       &registrationTokens{app: app},
		Bridge:       bridge,
		ProviderConfig: func(ctx context.Context) (config.ProviderConfig, error) {
			return resolver.Resolve(ctx), nil
		},
		Register: func(ctx context.Context, token string) error {
			now := time.Now()
			reg := storage.PushRegistration{
				Token:     token,
				CreatedAt: now,
				LastSeen:  now,
			}
			if user := hub.Current(); user != nil {
				reg.UserID = user.ID
			}
			return store.SavePushRegistration(ctx, reg)
		},
		Notify: func(toast push.Toast) {
			events.PublishToast(toast.Title, toast.Description, toast.Destructive)
		},
	})

	opts := server.Options{
		Config:   &cfg,
		Resolver: resolver,
		Store:    store,
		Signin:   controller,
		Auth:     authn,
		Flow:     flow,
		Bridge:   bridge,
		Caps:     caps,
		Sessions: hub,
		Events:   events,
	}

	// With service account credentials the admin SDK re-verifies session ID
	// tokens and performs real sends; without it those stay mocked.
	if cfg.CredentialsFile != "" {
		opts.Verifier = &adminVerifier{app: app}
		opts.Sender = &adminSender{app: app}
	}

	srv := server.New(opts)
	httpServer := server.NewHTTPServer(srv.Handler(), cfg.Server.Addr)

	return &FirebaseFront{
		config:     cfg,
		httpServer: httpServer,
		storage:    store,
		cleanup:    storage.NewCleanupManager(store, cleanupInterval, registrationMaxAge),
	}, nil
}

// Run starts and manages the complete application lifecycle
func (f *FirebaseFront) Run() error {
	log.LogInfoWithFields("frontapp", "Starting application", map[string]any{
		"addr": f.config.Server.Addr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)

	go func() {
		if err := f.httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	f.cleanup.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var shutdownReason string
	select {
	case sig := <-sigChan:
		shutdownReason = fmt.Sprintf("signal %v", sig)
		log.LogInfoWithFields("frontapp", "Received shutdown signal", map[string]any{
			"signal": sig.String(),
		})
	case err := <-errChan:
		shutdownReason = fmt.Sprintf("error: %v", err)
		log.LogErrorWithFields("frontapp", "Shutting down due to error", map[string]any{
			"error": err.Error(),
		})
	case <-ctx.Done():
		shutdownReason = "context cancelled"
		log.LogInfoWithFields("frontapp", "Context cancelled, shutting down", nil)
	}

	log.LogInfoWithFields("frontapp", "Starting graceful shutdown", map[string]any{
		"reason":  shutdownReason,
		"timeout": "30s",
	})
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := f.httpServer.Stop(shutdownCtx); err != nil {
		log.LogErrorWithFields("frontapp", "HTTP server shutdown error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	f.cleanup.Stop()

	if err := f.storage.Close(); err != nil {
		log.LogWarnWithFields("frontapp", "Storage close error", map[string]any{
			"error": err.Error(),
		})
	}

	log.LogInfoWithFields("frontapp", "Application shutdown complete", map[string]any{
		"reason": shutdownReason,
	})
	return nil
}

// setupStorage creates the persistence layer selected by configuration
func setupStorage(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.Storage == config.StorageKindFirestore {
		log.LogInfoWithFields("storage", "Using Firestore storage", map[string]any{
			"project": cfg.Provider.ProjectID,
		})
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		store, err := storage.NewFirestoreStore(ctx, cfg.Provider.ProjectID, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore storage: %w", err)
		}
		return store, nil
	}

	log.LogInfoWithFields("storage", "Using in-memory storage", map[string]any{})
	return storage.NewMemoryStore(), nil
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// credentialService adapts the lazily-bootstrapped identity client to the
// sign-in controller. Each call derives the client so the first sign-in
// triggers backend bootstrap.
type credentialService struct {
	app *backend.App
}

func (s *credentialService) SignInWithPassword(ctx context.Context, email, password string) (*backend.SignInResult, error) {
	identity, err := s.app.Identity(ctx)
	if err != nil {
		return nil, err
	}
	result, err := identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, "login")
	return result, nil
}

func (s *credentialService) SignUpWithPassword(ctx context.Context, email, password string) (*backend.SignInResult, error) {
	identity, err := s.app.Identity(ctx)
	if err != nil {
		return nil, err
	}
	result, err := identity.SignUpWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, "sign_up")
	return result, nil
}

func (s *credentialService) logEvent(ctx context.Context, name string) {
	analytics, err := s.app.Analytics(ctx)
	if err != nil {
		return
	}
	analytics.LogEvent(name, map[string]any{"method": "password"})
}

// registrationTokens adapts the lazily-derived registration client to the
// push flow's token source.
type registrationTokens struct {
	app *backend.App
}

func (r *registrationTokens) ExchangeToken(ctx context.Context, sub platform.PushSubscription, vapidKey string) (string, error) {
	regs, err := r.app.Registrations(ctx)
	if err != nil {
		return "", err
	}
	return regs.ExchangeToken(ctx, sub, vapidKey)
}

// adminVerifier re-verifies session ID tokens through the admin SDK
type adminVerifier struct {
	app *backend.App
}

func (v *adminVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	client, err := v.app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return client.VerifyIDToken(ctx, idToken)
}

// adminSender performs real sends through the admin SDK messaging client
type adminSender struct {
	app *backend.App
}

func (s *adminSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	client, err := s.app.Messaging(ctx)
	if err != nil {
		return "", err
	}
	return client.Send(ctx, message)
}
