package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgellow/firebase-front/internal/config"
	"github.com/google/uuid"
)

// Ensure MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// MemoryStore is the in-process store used in development and tests. Data
// lives for the process lifetime only.
type MemoryStore struct {
	configMutex    sync.RWMutex
	providerConfig *config.ProviderConfig

	domainsMutex sync.RWMutex
	authDomains  []string

	registrationsMutex sync.RWMutex
	registrations      map[string]*PushRegistration // keyed by token
}

// NewMemoryStore creates a new empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		registrations: make(map[string]*PushRegistration),
	}
}

// ProviderConfig returns the persisted override, or nil when none exists
func (s *MemoryStore) ProviderConfig(ctx context.Context) (*config.ProviderConfig, error) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	if s.providerConfig == nil {
		return nil, nil
	}
	cfg := *s.providerConfig
	return &cfg, nil
}

// SetProviderConfig stores the override verbatim
func (s *MemoryStore) SetProviderConfig(ctx context.Context, cfg config.ProviderConfig) error {
	s.configMutex.Lock()
	defer s.configMutex.Unlock()

	s.providerConfig = &cfg
	return nil
}

// AuthDomains returns the saved-domains list
func (s *MemoryStore) AuthDomains(ctx context.Context) ([]string, error) {
	s.domainsMutex.RLock()
	defer s.domainsMutex.RUnlock()

	return slices.Clone(s.authDomains), nil
}

// AddAuthDomain appends a domain, ignoring duplicates
func (s *MemoryStore) AddAuthDomain(ctx context.Context, domain string) error {
	s.domainsMutex.Lock()
	defer s.domainsMutex.Unlock()

	if slices.Contains(s.authDomains, domain) {
		return nil
	}
	s.authDomains = append(s.authDomains, domain)
	return nil
}

// RemoveAuthDomain removes a saved domain
func (s *MemoryStore) RemoveAuthDomain(ctx context.Context, domain string) error {
	s.domainsMutex.Lock()
	defer s.domainsMutex.Unlock()

	i := slices.Index(s.authDomains, domain)
	if i < 0 {
		return ErrDomainNotFound
	}
	s.authDomains = slices.Delete(s.authDomains, i, i+1)
	return nil
}

// SavePushRegistration upserts a registration keyed by token
func (s *MemoryStore) SavePushRegistration(ctx context.Context, reg PushRegistration) error {
	if reg.Token == "" {
		return fmt.Errorf("registration token cannot be empty")
	}

	s.registrationsMutex.Lock()
	defer s.registrationsMutex.Unlock()

	now := time.Now()
	if existing, ok := s.registrations[reg.Token]; ok {
		existing.UserID = reg.UserID
		existing.LastSeen = now
		return nil
	}

	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.LastSeen = now
	s.registrations[reg.Token] = &reg
	return nil
}

// ListPushRegistrations returns all registrations
func (s *MemoryStore) ListPushRegistrations(ctx context.Context) ([]PushRegistration, error) {
	s.registrationsMutex.RLock()
	defer s.registrationsMutex.RUnlock()

	regs := make([]PushRegistration, 0, len(s.registrations))
	for _, reg := range s.registrations {
		regs = append(regs, *reg)
	}
	return regs, nil
}

// DeleteStaleRegistrations removes registrations unseen since olderThan
func (s *MemoryStore) DeleteStaleRegistrations(ctx context.Context, olderThan time.Time) (int, error) {
	s.registrationsMutex.Lock()
	defer s.registrationsMutex.Unlock()

	count := 0
	for token, reg := range s.registrations {
		if reg.LastSeen.Before(olderThan) {
			delete(s.registrations, token)
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
