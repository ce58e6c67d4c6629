// Package server exposes the app over HTTP: the rendered views, the auth
// and push APIs, the notification relay endpoints, and the SSE event
// stream.
package server

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/crypto"
	"github.com/dgellow/firebase-front/internal/idp"
	"github.com/dgellow/firebase-front/internal/platform"
	"github.com/dgellow/firebase-front/internal/push"
	"github.com/dgellow/firebase-front/internal/session"
	"github.com/dgellow/firebase-front/internal/signin"
	"github.com/dgellow/firebase-front/internal/storage"
)

// sessionTTL bounds how long a session cookie stays valid
const sessionTTL = 24 * time.Hour

// TokenVerifier validates backend-issued ID tokens. Satisfied by the admin
// SDK's auth client; nil when no service account is configured.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Messenger performs real push sends. Satisfied by the admin SDK's
// messaging client; nil leaves the send endpoint in mock mode.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Options wires a Server's collaborators
type Options struct {
	Config   *config.Config
	Resolver *config.Resolver
	Store    storage.Store
	Signin   *signin.Controller
	Auth     *idp.Authenticator
	Flow     *push.Flow
	Bridge   *push.Bridge
	Caps     *platform.Fixed
	Sessions *session.Hub
	Events   *Events
	Verifier TokenVerifier
	Sender   Messenger
}

// Server holds the handler state
type Server struct {
	cfg      *config.Config
	resolver *config.Resolver
	store    storage.Store
	signin   *signin.Controller
	auth     *idp.Authenticator
	flow     *push.Flow
	bridge   *push.Bridge
	sessions *session.Hub
	events   *Events
	verifier TokenVerifier
	sender   Messenger
	signer   crypto.TokenSigner

	// caps reflects the last reported client environment for the push flow
	capsMu sync.Mutex
	caps   *platform.Fixed
}

// New creates a server
func New(opts Options) *Server {
	return &Server{
		cfg:      opts.Config,
		resolver: opts.Resolver,
		store:    opts.Store,
		signin:   opts.Signin,
		auth:     opts.Auth,
		flow:     opts.Flow,
		bridge:   opts.Bridge,
		caps:     opts.Caps,
		sessions: opts.Sessions,
		events:   opts.Events,
		verifier: opts.Verifier,
		sender:   opts.Sender,
		signer:   crypto.NewTokenSigner([]byte(opts.Config.Server.SigningKey), sessionTTL),
	}
}

// Events returns the server's UI event feed
func (s *Server) Events() *Events {
	return s.events
}

// Host returns the hostname of the configured base URL
func (s *Server) Host() string {
	u, err := url.Parse(s.cfg.Server.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Handler builds the route table wrapped with the standard middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Views
	mux.HandleFunc("GET /{$}", s.handleIndexPage)
	mux.Handle("GET /dashboard", s.requirePageUser(http.HandlerFunc(s.handleDashboardPage)))
	mux.HandleFunc("GET /auth/redirect", s.handleRedirectPage)
	mux.HandleFunc("GET /setup-guide", s.handleSetupGuidePage)
	mux.Handle("GET /test-notification", s.requirePageUser(http.HandlerFunc(s.handleTestNotificationPage)))

	// Auth API. State-changing endpoints carry the double-submit CSRF check;
	// the provider callback is a top-level navigation and cannot.
	mux.Handle("POST /api/auth/signin", s.requireCSRF(http.HandlerFunc(s.handleSignIn)))
	mux.Handle("POST /api/auth/signup", s.requireCSRF(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /api/auth/google", s.requireCSRF(http.HandlerFunc(s.handleGoogleSignIn)))
	mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
	mux.Handle("POST /api/auth/signout", s.requireCSRF(http.HandlerFunc(s.handleSignOut)))
	mux.Handle("GET /api/auth/me", s.requireAPIUser(http.HandlerFunc(s.handleMe)))
	mux.HandleFunc("GET /api/auth/stream", s.handleEventStream)

	// Notification relay
	mux.HandleFunc("POST /api/register-fcm-token", s.handleRegisterToken)
	mux.HandleFunc("POST /api/send-notification", s.handleSendNotification)

	// Push enablement
	mux.Handle("POST /api/push/enable", s.requireAPIUser(s.requireCSRF(http.HandlerFunc(s.handlePushEnable))))
	mux.Handle("GET /api/notifications", s.requireAPIUser(http.HandlerFunc(s.handleNotifications)))

	// Provider config and setup guide data
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.Handle("POST /api/config", s.requireCSRF(http.HandlerFunc(s.handleSetConfig)))
	mux.HandleFunc("GET /api/domains", s.handleListDomains)
	mux.Handle("POST /api/domains", s.requireCSRF(http.HandlerFunc(s.handleAddDomain)))
	mux.Handle("DELETE /api/domains", s.requireCSRF(http.HandlerFunc(s.handleRemoveDomain)))

	mux.Handle("GET /health", NewHealthHandler())

	return ChainMiddleware(mux,
		s.withSessionUser,
		NewRecoverMiddleware("server"),
		NewLoggerMiddleware("server"),
		NewCORSMiddleware(nil),
	)
}
