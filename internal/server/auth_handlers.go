package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgellow/firebase-front/internal/cookie"
	jsonwriter "github.com/dgellow/firebase-front/internal/json"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/session"
	"github.com/dgellow/firebase-front/internal/signin"
	"github.com/dgellow/firebase-front/internal/sse"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success  bool          `json:"success"`
	User     *session.User `json:"user,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
}

// handleSignIn authenticates an email/password pair
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := s.signin.SignInWithEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, signin.ErrAttemptInProgress) {
			jsonwriter.WriteError(w, http.StatusConflict, "attempt_in_progress", "A sign-in attempt is already in progress")
			return
		}
		jsonwriter.WriteBareError(w, http.StatusUnauthorized, signin.MessageForSignIn(err))
		return
	}

	s.establishSession(w, result.User, result.IDToken)
	jsonwriter.WriteResponse(w, http.StatusOK, authResponse{Success: true, User: result.User, Redirect: "/dashboard"})
}

// handleSignUp creates a new email/password account
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := s.signin.SignUpWithEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, signin.ErrAttemptInProgress) {
			jsonwriter.WriteError(w, http.StatusConflict, "attempt_in_progress", "A sign-in attempt is already in progress")
			return
		}
		jsonwriter.WriteBareError(w, http.StatusBadRequest, signin.MessageForSignUp(err))
		return
	}

	s.establishSession(w, result.User, result.IDToken)
	jsonwriter.WriteResponse(w, http.StatusOK, authResponse{Success: true, User: result.User, Redirect: "/dashboard"})
}

// handleGoogleSignIn runs the federated flow. When the popup path falls
// back to a redirect, the staged authorization URL is returned for the
// client to follow.
func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	err := s.signin.SignInWithFederatedProvider(r.Context())

	if authURL := s.auth.ConsumeRedirectURL(); authURL != "" {
		jsonwriter.WriteResponse(w, http.StatusOK, authResponse{Success: true, Redirect: authURL})
		return
	}

	if err != nil {
		if errors.Is(err, signin.ErrAttemptInProgress) {
			jsonwriter.WriteError(w, http.StatusConflict, "attempt_in_progress", "A sign-in attempt is already in progress")
			return
		}
		jsonwriter.WriteBareError(w, http.StatusUnauthorized, signin.MessageForFederated(err, s.Host()))
		return
	}

	if s.signin.State() == signin.StateFailed {
		// Preview origins settle as failed without an error
		jsonwriter.WriteBareError(w, http.StatusForbidden, "Google Sign-In is not available in preview environments")
		return
	}

	user := s.sessions.Current()
	s.establishSession(w, user, "")
	jsonwriter.WriteResponse(w, http.StatusOK, authResponse{Success: true, User: user, Redirect: "/dashboard"})
}

// handleGoogleCallback stages the provider's redirect callback and moves
// the browser to the completion view.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		jsonwriter.WriteBadRequest(w, "Missing code or state")
		return
	}

	s.auth.StageCallback(code, state)
	http.Redirect(w, r, "/auth/redirect", http.StatusFound)
}

// handleSignOut clears the session and its CSRF token
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.sessions.Set(nil)
	cookie.ClearSession(w)
	cookie.ClearCSRF(w)
	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{"success": true})
}

// handleMe returns the signed-in user
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	jsonwriter.WriteResponse(w, http.StatusOK, userFromContext(r.Context()))
}

// handleEventStream streams auth-state changes and UI events over SSE. The
// current user is delivered immediately, matching the auth observer's
// subscribe-then-fire behavior.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher := sse.SetupHeaders(w)
	if flusher == nil {
		jsonwriter.WriteInternalServerError(w, "Streaming unsupported")
		return
	}

	authEvents := make(chan Event, 16)
	unobserve := s.sessions.Observe(func(u *session.User) {
		select {
		case authEvents <- Event{Type: "auth", User: u}:
		default:
		}
	})
	defer unobserve()

	uiEvents, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-authEvents:
			if err := sse.WriteEvent(w, flusher, ev.Type, ev); err != nil {
				log.LogDebug("event stream write failed: %v", err)
				return
			}
		case ev := <-uiEvents:
			if err := sse.WriteEvent(w, flusher, ev.Type, ev); err != nil {
				log.LogDebug("event stream write failed: %v", err)
				return
			}
		}
	}
}
