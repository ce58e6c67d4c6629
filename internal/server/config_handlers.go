package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgellow/firebase-front/internal/config"
	jsonwriter "github.com/dgellow/firebase-front/internal/json"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/storage"
)

// handleGetConfig returns the resolved provider config: the persisted
// override when complete, the deploy-time defaults otherwise.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	jsonwriter.WriteResponse(w, http.StatusOK, s.resolver.Resolve(r.Context()))
}

// handleSetConfig persists a provider config override verbatim. Validation
// happens at use, not at save, so partial configs can be staged.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.ProviderConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := s.resolver.Persist(r.Context(), cfg); err != nil {
		log.LogError("failed to persist provider config: %v", err)
		jsonwriter.WriteInternalServerError(w, "Failed to save configuration")
		return
	}

	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{"success": true})
}

type domainRequest struct {
	Domain string `json:"domain"`
}

// handleListDomains returns the setup guide's saved auth domains
func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.AuthDomains(r.Context())
	if err != nil {
		jsonwriter.WriteInternalServerError(w, "Failed to list domains")
		return
	}
	if domains == nil {
		domains = []string{}
	}
	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{"domains": domains})
}

// handleAddDomain saves an auth domain for the setup guide
func (s *Server) handleAddDomain(w http.ResponseWriter, r *http.Request) {
	var req domainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Domain == "" {
		jsonwriter.WriteBadRequest(w, "Domain is required")
		return
	}

	if err := s.store.AddAuthDomain(r.Context(), req.Domain); err != nil {
		jsonwriter.WriteInternalServerError(w, "Failed to save domain")
		return
	}
	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{"success": true})
}

// handleRemoveDomain deletes a saved auth domain
func (s *Server) handleRemoveDomain(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		var req domainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			domain = req.Domain
		}
	}
	if domain == "" {
		jsonwriter.WriteBadRequest(w, "Domain is required")
		return
	}

	if err := s.store.RemoveAuthDomain(r.Context(), domain); err != nil {
		if errors.Is(err, storage.ErrDomainNotFound) {
			jsonwriter.WriteNotFound(w, "Domain not found")
			return
		}
		jsonwriter.WriteInternalServerError(w, "Failed to remove domain")
		return
	}
	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{"success": true})
}
