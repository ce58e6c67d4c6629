package config

import (
	"context"
	"fmt"

	"github.com/dgellow/firebase-front/internal/log"
)

// OverrideKey is the storage key the persisted provider config lives under
const OverrideKey = "firebaseConfig"

// OverrideStore reads and writes the persisted provider config override.
// A nil config with nil error means no override has been persisted.
type OverrideStore interface {
	ProviderConfig(ctx context.Context) (*ProviderConfig, error)
	SetProviderConfig(ctx context.Context, cfg ProviderConfig) error
}

// Resolver supplies connection parameters for the backend provider,
// preferring a persisted override over the compiled-in defaults.
type Resolver struct {
	defaults ProviderConfig
	store    OverrideStore
}

// NewResolver creates a resolver over the given defaults and override store
func NewResolver(defaults ProviderConfig, store OverrideStore) *Resolver {
	return &Resolver{defaults: defaults, store: store}
}

// Resolve returns the effective provider config: the persisted override when
// it carries all required fields, the defaults otherwise. A fresh value is
// returned on every call; callers never share a mutable config.
func (r *Resolver) Resolve(ctx context.Context) ProviderConfig {
	override, err := r.store.ProviderConfig(ctx)
	if err != nil {
		log.LogWarnWithFields("config", "Failed to read provider config override", map[string]any{
			"error": err.Error(),
		})
		return r.defaults
	}

	if override == nil || !override.HasRequiredFields() {
		return r.defaults
	}

	return *override
}

// Persist writes the given config verbatim to the override store. No
// validation is performed; Resolve decides usability on read.
func (r *Resolver) Persist(ctx context.Context, cfg ProviderConfig) error {
	if err := r.store.SetProviderConfig(ctx, cfg); err != nil {
		return fmt.Errorf("persisting provider config: %w", err)
	}
	return nil
}

// Seed writes the compiled-in defaults to the override store, but only when
// no override exists yet. Called once at startup: a previously persisted
// override is never clobbered by the defaults.
func (r *Resolver) Seed(ctx context.Context) error {
	existing, err := r.store.ProviderConfig(ctx)
	if err != nil {
		return fmt.Errorf("checking for existing override: %w", err)
	}
	if existing != nil {
		return nil
	}
	return r.Persist(ctx, r.defaults)
}

// Defaults returns a copy of the compiled-in default config
func (r *Resolver) Defaults() ProviderConfig {
	return r.defaults
}
