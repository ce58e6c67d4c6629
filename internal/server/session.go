package server

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/dgellow/firebase-front/internal/cookie"
	"github.com/dgellow/firebase-front/internal/crypto"
	jsonwriter "github.com/dgellow/firebase-front/internal/json"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/session"
)

type contextKey string

const userContextKey contextKey = "session_user"

// sessionData is the signed payload carried by the session cookie
type sessionData struct {
	User    session.User `json:"user"`
	IDToken string       `json:"idToken,omitempty"`
}

// userFromContext returns the signed-in user attached by the session
// middleware, or nil.
func userFromContext(ctx context.Context) *session.User {
	u, _ := ctx.Value(userContextKey).(*session.User)
	return u
}

// establishSession signs a session cookie for the user. The ID token rides
// along when the identity API issued one so it can be re-verified.
func (s *Server) establishSession(w http.ResponseWriter, user *session.User, idToken string) {
	token, err := s.signer.Sign(sessionData{User: *user, IDToken: idToken})
	if err != nil {
		log.LogError("failed to sign session cookie: %v", err)
		return
	}
	cookie.SetSession(w, token, sessionTTL)
}

// withSessionUser attaches the cookie's user to the request context. An
// invalid or expired cookie is cleared and the request continues
// unauthenticated.
func (s *Server) withSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, err := cookie.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var data sessionData
		if err := s.signer.Verify(value, &data); err != nil {
			log.LogDebug("invalid session cookie: %v", err)
			cookie.ClearSession(w)
			next.ServeHTTP(w, r)
			return
		}

		if s.verifier != nil && data.IDToken != "" {
			if _, err := s.verifier.VerifyIDToken(r.Context(), data.IDToken); err != nil {
				log.LogDebugWithFields("session", "ID token verification failed", map[string]any{
					"error": err.Error(),
				})
				cookie.ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userContextKey, &data.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureCSRF returns the request's CSRF token, issuing a fresh cookie when
// none is present. Page handlers call this so the scripts they serve can
// echo the token back on state-changing requests.
func (s *Server) ensureCSRF(w http.ResponseWriter, r *http.Request) string {
	if token, err := cookie.GetCSRF(r); err == nil && token != "" {
		return token
	}

	token, err := crypto.GenerateSecureToken()
	if err != nil {
		log.LogError("failed to generate CSRF token: %v", err)
		return ""
	}
	cookie.SetCSRF(w, token)
	return token
}

// requireCSRF enforces the double-submit check on state-changing endpoints:
// the X-CSRF-Token header must match the token cookie issued with the page.
func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := cookie.GetCSRF(r)
		header := r.Header.Get("X-CSRF-Token")
		if err != nil || header == "" || subtle.ConstantTimeCompare([]byte(token), []byte(header)) != 1 {
			jsonwriter.WriteError(w, http.StatusForbidden, "invalid_csrf", "CSRF token missing or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requirePageUser redirects unauthenticated page requests to the entry view
func (s *Server) requirePageUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAPIUser rejects unauthenticated API requests
func (s *Server) requireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			jsonwriter.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
