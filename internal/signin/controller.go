// Package signin orchestrates credential and federated sign-in: the attempt
// state machine, the popup to redirect fallback, and the classification of
// provider errors into user-facing advisories.
package signin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgellow/firebase-front/internal/backend"
	"github.com/dgellow/firebase-front/internal/emailutil"
	"github.com/dgellow/firebase-front/internal/hostclass"
	"github.com/dgellow/firebase-front/internal/idp"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/session"
)

// State is the sign-in attempt lifecycle
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// redirectErrorDelay gives the user time to read a redirect completion
// error before navigating back to the entry view
const redirectErrorDelay = 3 * time.Second

// ErrAttemptInProgress is returned when a sign-in call arrives while an
// earlier attempt is still submitting. Competing attempts are rejected
// outright rather than interleaved.
var ErrAttemptInProgress = errors.New("a sign-in attempt is already in progress")

// CredentialAuthenticator performs email/password sign-in and sign-up
type CredentialAuthenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*backend.SignInResult, error)
	SignUpWithPassword(ctx context.Context, email, password string) (*backend.SignInResult, error)
}

// FederatedAuthenticator performs provider sign-in via popup or redirect
type FederatedAuthenticator interface {
	SignInWithPopup(ctx context.Context) (*session.User, error)
	SignInWithRedirect(ctx context.Context) error
	RedirectResult(ctx context.Context) (*session.User, error)
}

// Toast is a transient advisory surfaced to the user
type Toast struct {
	Title       string
	Description string
	Destructive bool
}

// Advisory is a persistent panel requiring an out-of-band configuration fix
type Advisory struct {
	Message string
}

// Config wires a Controller's collaborators
type Config struct {
	Credentials CredentialAuthenticator
	Federated   FederatedAuthenticator
	Sessions    *session.Hub

	// Host is the origin hostname, used for preview classification and
	// domain-specific advisory copy
	Host string

	// Navigate moves the UI to the given path
	Navigate func(path string)

	// Notify surfaces a transient toast
	Notify func(Toast)

	// Delay schedules fn after d; tests inject an immediate version
	Delay func(d time.Duration, fn func())
}

// Controller is the sign-in flow state machine. A single instance backs the
// entry view; concurrent attempts are rejected with ErrAttemptInProgress
// instead of relying on the buttons being disabled.
type Controller struct {
	creds     CredentialAuthenticator
	federated FederatedAuthenticator
	sessions  *session.Hub
	host      string
	navigate  func(string)
	notify    func(Toast)
	delay     func(time.Duration, func())

	mu       sync.Mutex
	state    State
	advisory *Advisory
}

// NewController creates a sign-in controller in the Idle state
func NewController(cfg Config) *Controller {
	c := &Controller{
		creds:     cfg.Credentials,
		federated: cfg.Federated,
		sessions:  cfg.Sessions,
		host:      cfg.Host,
		navigate:  cfg.Navigate,
		notify:    cfg.Notify,
		delay:     cfg.Delay,
		state:     StateIdle,
	}
	if c.navigate == nil {
		c.navigate = func(string) {}
	}
	if c.notify == nil {
		c.notify = func(Toast) {}
	}
	if c.delay == nil {
		c.delay = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	return c
}

// State returns the current attempt state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Advisory returns the persistent advisory panel content, or nil
func (c *Controller) Advisory() *Advisory {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.advisory == nil {
		return nil
	}
	a := *c.advisory
	return &a
}

// ClearAdvisory dismisses the persistent advisory panel
func (c *Controller) ClearAdvisory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advisory = nil
}

// begin moves Idle (or a settled state) to Submitting, rejecting attempts
// that arrive while another is in flight.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrAttemptInProgress
	}
	c.state = StateSubmitting
	return nil
}

func (c *Controller) settle(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SignInWithEmail authenticates an email/password pair and navigates to the
// dashboard on success. The returned result carries the provider tokens so
// callers can bind them to their own session.
func (c *Controller) SignInWithEmail(ctx context.Context, email, password string) (*backend.SignInResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}

	result, err := c.creds.SignInWithPassword(ctx, emailutil.Normalize(email), password)
	if err != nil {
		code := ""
		if credErr := backend.AsCredentialError(err); credErr != nil {
			code = credErr.Code
		}
		log.LogDebugWithFields("signin", "Credential sign-in failed", map[string]any{"code": code})

		c.notify(Toast{Title: "Sign In Failed", Description: credentialSignInMessage(code), Destructive: true})
		c.settle(StateFailed)
		return nil, err
	}

	c.sessions.Set(result.User)
	c.notify(Toast{Title: "Sign In Successful", Description: "Welcome back!"})
	c.navigate("/dashboard")
	c.settle(StateSucceeded)
	return result, nil
}

// SignUpWithEmail creates a new account and navigates to the dashboard on
// success.
func (c *Controller) SignUpWithEmail(ctx context.Context, email, password string) (*backend.SignInResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}

	result, err := c.creds.SignUpWithPassword(ctx, emailutil.Normalize(email), password)
	if err != nil {
		code := ""
		if credErr := backend.AsCredentialError(err); credErr != nil {
			code = credErr.Code
		}
		log.LogDebugWithFields("signin", "Credential sign-up failed", map[string]any{"code": code})

		c.notify(Toast{Title: "Sign Up Failed", Description: credentialSignUpMessage(code), Destructive: true})
		c.settle(StateFailed)
		return nil, err
	}

	c.sessions.Set(result.User)
	c.notify(Toast{Title: "Account Created", Description: "Your account has been created successfully!"})
	c.navigate("/dashboard")
	c.settle(StateSucceeded)
	return result, nil
}

// SignInWithFederatedProvider runs the provider sign-in. Preview origins are
// gated off before any provider call. A popup attempt rejected specifically
// as popup-blocked falls back to the redirect flow exactly once; every other
// error class maps to its advisory and settles the attempt as Failed.
func (c *Controller) SignInWithFederatedProvider(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}

	if hostclass.IsPreview(c.host) {
		log.LogDebugWithFields("signin", "Federated sign-in gated on preview origin", map[string]any{"host": c.host})
		c.notify(Toast{Title: "Authentication Method", Description: previewAdvisoryMessage})
		c.settle(StateFailed)
		return nil
	}

	user, err := c.federated.SignInWithPopup(ctx)
	if err == nil {
		c.sessions.Set(user)
		c.notify(Toast{Title: "Sign In Successful", Description: "Welcome back!"})
		c.navigate("/dashboard")
		c.settle(StateSucceeded)
		return nil
	}

	if fe := idp.AsFederatedError(err); fe != nil && fe.Code == idp.CodePopupBlocked {
		c.notify(Toast{
			Title:       "Popup Blocked",
			Description: "Using redirect method instead. You'll be redirected to Google's sign-in page.",
		})

		// The redirect's result is only observable after the round trip,
		// on the completion view. No second fallback on failure.
		if redirectErr := c.federated.SignInWithRedirect(ctx); redirectErr != nil {
			c.failFederated(redirectErr)
			return redirectErr
		}
		// The attempt is handed off to the completion view, which owns the
		// terminal state. The browser may never come back, so the in-flight
		// guard must not stay held across the round trip.
		c.settle(StateIdle)
		return nil
	}

	c.failFederated(err)
	return err
}

// CompleteFederatedRedirect finishes a redirect flow on the completion view.
// A present user succeeds into the dashboard; no pending redirect returns to
// the entry view; an error is surfaced and the return is delayed so the
// user can read it.
func (c *Controller) CompleteFederatedRedirect(ctx context.Context) (*session.User, error) {
	user, err := c.federated.RedirectResult(ctx)
	if err != nil {
		log.LogWarn("Redirect sign-in failed: %v", err)
		c.settle(StateFailed)
		c.delay(redirectErrorDelay, func() { c.navigate("/") })
		return nil, err
	}

	if user == nil {
		c.settle(StateIdle)
		c.navigate("/")
		return nil, nil
	}

	c.sessions.Set(user)
	c.notify(Toast{Title: "Sign In Successful", Description: "You've successfully signed in with Google"})
	c.navigate("/dashboard")
	c.settle(StateSucceeded)
	return user, nil
}

func (c *Controller) failFederated(err error) {
	code := ""
	if fe := idp.AsFederatedError(err); fe != nil {
		code = fe.Code
	}
	toast, advisory := federatedMessages(code, c.host)
	log.LogDebugWithFields("signin", "Federated sign-in failed", map[string]any{"code": code})

	if advisory != "" {
		c.mu.Lock()
		c.advisory = &Advisory{Message: advisory}
		c.mu.Unlock()
	}
	c.notify(Toast{Title: "Google Sign In Failed", Description: toast, Destructive: true})
	c.settle(StateFailed)
}
