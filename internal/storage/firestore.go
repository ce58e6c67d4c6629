package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	settingsCollection = "appSettings"
	tokenCollection    = "fcmTokens"
	authDomainsDoc     = "authDomains"
)

// Ensure FirestoreStore implements the Store interface
var _ Store = (*FirestoreStore)(nil)

// FirestoreStore persists the config override, saved auth domains, and push
// token registrations in Google Cloud Firestore.
//
// Error handling strategy: read operations surface errors so callers can
// fall back to compiled-in defaults explicitly; absence (NotFound) is not an
// error, matching the Store contract.
type FirestoreStore struct {
	client    *firestore.Client
	projectID string
}

// providerConfigDoc mirrors config.ProviderConfig with firestore tags
type providerConfigDoc struct {
	APIKey            string `firestore:"api_key"`
	AuthDomain        string `firestore:"auth_domain"`
	ProjectID         string `firestore:"project_id"`
	StorageBucket     string `firestore:"storage_bucket"`
	MessagingSenderID string `firestore:"messaging_sender_id"`
	AppID             string `firestore:"app_id"`
	MeasurementID     string `firestore:"measurement_id,omitempty"`
	VAPIDKey          string `firestore:"vapid_key,omitempty"`
}

func toProviderConfigDoc(cfg config.ProviderConfig) providerConfigDoc {
	return providerConfigDoc(cfg)
}

func (d providerConfigDoc) toProviderConfig() config.ProviderConfig {
	return config.ProviderConfig(d)
}

// authDomainsEntity is the single document holding the saved-domains list
type authDomainsEntity struct {
	Domains []string `firestore:"domains"`
}

// NewFirestoreStore creates a Firestore-backed store for the given project
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	log.LogInfoWithFields("storage", "Firestore store initialized", map[string]any{
		"project": projectID,
	})

	return &FirestoreStore{client: client, projectID: projectID}, nil
}

// ProviderConfig reads the persisted override, nil when none exists
func (s *FirestoreStore) ProviderConfig(ctx context.Context) (*config.ProviderConfig, error) {
	snap, err := s.client.Collection(settingsCollection).Doc(config.OverrideKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("reading provider config: %w", err)
	}

	var doc providerConfigDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decoding provider config: %w", err)
	}

	cfg := doc.toProviderConfig()
	return &cfg, nil
}

// SetProviderConfig stores the override verbatim
func (s *FirestoreStore) SetProviderConfig(ctx context.Context, cfg config.ProviderConfig) error {
	_, err := s.client.Collection(settingsCollection).Doc(config.OverrideKey).Set(ctx, toProviderConfigDoc(cfg))
	if err != nil {
		return fmt.Errorf("writing provider config: %w", err)
	}
	return nil
}

// AuthDomains returns the saved-domains list
func (s *FirestoreStore) AuthDomains(ctx context.Context) ([]string, error) {
	snap, err := s.client.Collection(settingsCollection).Doc(authDomainsDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("reading auth domains: %w", err)
	}

	var entity authDomainsEntity
	if err := snap.DataTo(&entity); err != nil {
		return nil, fmt.Errorf("decoding auth domains: %w", err)
	}
	return entity.Domains, nil
}

// AddAuthDomain appends a domain, ignoring duplicates
func (s *FirestoreStore) AddAuthDomain(ctx context.Context, domain string) error {
	domains, err := s.AuthDomains(ctx)
	if err != nil {
		return err
	}
	for _, d := range domains {
		if d == domain {
			return nil
		}
	}

	entity := authDomainsEntity{Domains: append(domains, domain)}
	if _, err := s.client.Collection(settingsCollection).Doc(authDomainsDoc).Set(ctx, entity); err != nil {
		return fmt.Errorf("writing auth domains: %w", err)
	}
	return nil
}

// RemoveAuthDomain removes a saved domain
func (s *FirestoreStore) RemoveAuthDomain(ctx context.Context, domain string) error {
	domains, err := s.AuthDomains(ctx)
	if err != nil {
		return err
	}

	remaining := make([]string, 0, len(domains))
	found := false
	for _, d := range domains {
		if d == domain {
			found = true
			continue
		}
		remaining = append(remaining, d)
	}
	if !found {
		return ErrDomainNotFound
	}

	entity := authDomainsEntity{Domains: remaining}
	if _, err := s.client.Collection(settingsCollection).Doc(authDomainsDoc).Set(ctx, entity); err != nil {
		return fmt.Errorf("writing auth domains: %w", err)
	}
	return nil
}

// SavePushRegistration upserts a registration document keyed by token
func (s *FirestoreStore) SavePushRegistration(ctx context.Context, reg PushRegistration) error {
	if reg.Token == "" {
		return fmt.Errorf("registration token cannot be empty")
	}

	now := time.Now()
	docRef := s.client.Collection(tokenCollection).Doc(reg.Token)

	snap, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existing PushRegistration
		if err := snap.DataTo(&existing); err != nil {
			return fmt.Errorf("decoding registration: %w", err)
		}
		existing.UserID = reg.UserID
		existing.LastSeen = now
		reg = existing
	case status.Code(err) == codes.NotFound:
		if reg.ID == "" {
			reg.ID = uuid.NewString()
		}
		if reg.CreatedAt.IsZero() {
			reg.CreatedAt = now
		}
		reg.LastSeen = now
	default:
		return fmt.Errorf("reading registration: %w", err)
	}

	if _, err := docRef.Set(ctx, reg); err != nil {
		return fmt.Errorf("writing registration: %w", err)
	}
	return nil
}

// ListPushRegistrations returns all registration documents
func (s *FirestoreStore) ListPushRegistrations(ctx context.Context) ([]PushRegistration, error) {
	var regs []PushRegistration

	iter := s.client.Collection(tokenCollection).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing registrations: %w", err)
		}

		var reg PushRegistration
		if err := snap.DataTo(&reg); err != nil {
			log.LogWarnWithFields("storage", "Skipping undecodable registration", map[string]any{
				"doc":   snap.Ref.ID,
				"error": err.Error(),
			})
			continue
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// DeleteStaleRegistrations removes registrations unseen since olderThan
func (s *FirestoreStore) DeleteStaleRegistrations(ctx context.Context, olderThan time.Time) (int, error) {
	iter := s.client.Collection(tokenCollection).Where("last_seen", "<", olderThan).Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return count, fmt.Errorf("querying stale registrations: %w", err)
		}

		if _, err := snap.Ref.Delete(ctx); err != nil {
			return count, fmt.Errorf("deleting registration %s: %w", snap.Ref.ID, err)
		}
		count++
	}
	return count, nil
}

// Close releases the underlying Firestore client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
