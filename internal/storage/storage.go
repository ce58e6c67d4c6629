package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dgellow/firebase-front/internal/config"
)

// ErrDomainNotFound is returned when removing a domain that was never saved
var ErrDomainNotFound = errors.New("auth domain not found")

// PushRegistration records a device token registered for push delivery.
// The register endpoint is documented as a placeholder for a real datastore
// write; this is that datastore write when a durable store is configured.
type PushRegistration struct {
	ID        string    `json:"id" firestore:"id"`
	Token     string    `json:"token" firestore:"token"`
	UserID    string    `json:"userId" firestore:"user_id"`
	CreatedAt time.Time `json:"createdAt" firestore:"created_at"`
	LastSeen  time.Time `json:"lastSeen" firestore:"last_seen"`
}

// Store combines all persistence the app needs: the provider config
// override (key "firebaseConfig"), the setup guide's saved auth domains
// (key "authDomains"), and push token registrations.
type Store interface {
	// Provider config override; nil with nil error when none persisted
	config.OverrideStore

	// Saved-domains list for the setup guide view
	AuthDomains(ctx context.Context) ([]string, error)
	AddAuthDomain(ctx context.Context, domain string) error
	RemoveAuthDomain(ctx context.Context, domain string) error

	// Push token registrations
	SavePushRegistration(ctx context.Context, reg PushRegistration) error
	ListPushRegistrations(ctx context.Context) ([]PushRegistration, error)
	DeleteStaleRegistrations(ctx context.Context, olderThan time.Time) (int, error)

	Close() error
}
