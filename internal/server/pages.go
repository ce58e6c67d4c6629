package server

import (
	"net/http"

	"github.com/dgellow/firebase-front/internal/hostclass"
	"github.com/dgellow/firebase-front/internal/log"
)

// handleIndexPage renders the sign-in entry view. Signed-in users go
// straight to the dashboard, matching the auth observer's behavior.
func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	if userFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	s.ensureCSRF(w, r)
	host := s.Host()
	data := IndexPageData{
		Host:      host,
		IsPreview: hostclass.IsPreview(host),
		Advisory:  s.signin.Advisory(),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		log.LogError("failed to render index page: %v", err)
	}
}

// handleDashboardPage renders the dashboard
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	s.ensureCSRF(w, r)
	data := DashboardPageData{
		User:          userFromContext(r.Context()),
		Token:         s.flow.Token(),
		Permission:    string(s.flow.Permission()),
		Fault:         s.flow.Fault(),
		Notifications: s.flow.Notifications(),
	}
	if err := dashboardTemplate.Execute(w, data); err != nil {
		log.LogError("failed to render dashboard page: %v", err)
	}
}

// handleRedirectPage completes a pending federated redirect. A present user
// succeeds into the dashboard; nothing pending returns to the entry view;
// an error renders with a delayed return so the user can read it.
func (s *Server) handleRedirectPage(w http.ResponseWriter, r *http.Request) {
	user, err := s.signin.CompleteFederatedRedirect(r.Context())
	if err != nil {
		if execErr := redirectTemplate.Execute(w, RedirectPageData{Error: err.Error()}); execErr != nil {
			log.LogError("failed to render redirect page: %v", execErr)
		}
		return
	}

	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	s.establishSession(w, user, "")
	if err := redirectTemplate.Execute(w, RedirectPageData{Success: true}); err != nil {
		log.LogError("failed to render redirect page: %v", err)
	}
}

// handleSetupGuidePage renders the setup guide with the saved auth domains
func (s *Server) handleSetupGuidePage(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.AuthDomains(r.Context())
	if err != nil {
		log.LogError("failed to load auth domains: %v", err)
	}

	s.ensureCSRF(w, r)
	data := SetupGuidePageData{
		Host:    s.Host(),
		Domains: domains,
		Config:  s.resolver.Resolve(r.Context()),
	}
	if err := setupGuideTemplate.Execute(w, data); err != nil {
		log.LogError("failed to render setup guide page: %v", err)
	}
}

// handleTestNotificationPage renders the notification test view
func (s *Server) handleTestNotificationPage(w http.ResponseWriter, r *http.Request) {
	data := TestNotificationPageData{Token: s.flow.Token()}
	if err := testNotificationTemplate.Execute(w, data); err != nil {
		log.LogError("failed to render test notification page: %v", err)
	}
}
