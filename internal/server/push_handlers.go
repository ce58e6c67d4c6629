package server

import (
	"encoding/json"
	"net/http"

	jsonwriter "github.com/dgellow/firebase-front/internal/json"
	"github.com/dgellow/firebase-front/internal/platform"
)

// clientEnvironment is the browser-reported state the push flow runs
// against: worker support, the current permission, and the push
// subscription when one exists.
type clientEnvironment struct {
	ServiceWorker bool                       `json:"serviceWorker"`
	Permission    string                     `json:"permission"`
	Subscription  *platform.PushSubscription `json:"subscription"`
}

type pushEnableResponse struct {
	Success    bool   `json:"success"`
	Token      string `json:"token,omitempty"`
	Permission string `json:"permission"`
	Error      string `json:"error,omitempty"`
}

// handlePushEnable updates the reported client capabilities and runs the
// enablement flow.
func (s *Server) handlePushEnable(w http.ResponseWriter, r *http.Request) {
	var env clientEnvironment
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return
	}

	s.capsMu.Lock()
	s.caps.Document = true
	s.caps.Workers = env.ServiceWorker
	s.caps.Subscription = env.Subscription
	switch platform.Permission(env.Permission) {
	case platform.PermissionGranted, platform.PermissionDenied, platform.PermissionDefault:
		s.caps.Permission = platform.Permission(env.Permission)
	}
	// The browser already answered the prompt; re-requesting keeps that
	// answer
	s.caps.PromptResult = s.caps.Permission
	s.capsMu.Unlock()

	err := s.flow.Start(r.Context())

	resp := pushEnableResponse{
		Success:    err == nil && s.flow.Fault() == "",
		Token:      s.flow.Token(),
		Permission: string(s.flow.Permission()),
		Error:      s.flow.Fault(),
	}
	jsonwriter.WriteResponse(w, http.StatusOK, resp)
}

// handleNotifications returns received foreground notifications, newest
// first.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	jsonwriter.WriteResponse(w, http.StatusOK, s.flow.Notifications())
}
