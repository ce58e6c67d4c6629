package storage

import (
	"context"
	"time"

	"github.com/dgellow/firebase-front/internal/log"
)

// CleanupManager periodically prunes push token registrations that have not
// been seen for maxAge. Token rotation is the backend's responsibility; this
// only keeps the registration store from accumulating dead tokens.
type CleanupManager struct {
	store    Store
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(store Store, interval, maxAge time.Duration) *CleanupManager {
	return &CleanupManager{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the cleanup loop in a goroutine
func (cm *CleanupManager) Start(ctx context.Context) {
	log.LogInfoWithFields("cleanup", "Starting registration cleanup manager", map[string]any{
		"interval": cm.interval.String(),
		"maxAge":   cm.maxAge.String(),
	})

	go cm.run(ctx)
}

// Stop gracefully stops the cleanup loop
func (cm *CleanupManager) Stop() {
	close(cm.stopChan)
	<-cm.doneChan
	log.Logf("Registration cleanup manager stopped")
}

func (cm *CleanupManager) run(ctx context.Context) {
	defer close(cm.doneChan)

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run cleanup immediately on start
	cm.cleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.cleanup(ctx)
		case <-cm.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (cm *CleanupManager) cleanup(ctx context.Context) {
	count, err := cm.store.DeleteStaleRegistrations(ctx, time.Now().Add(-cm.maxAge))
	if err != nil {
		log.LogErrorWithFields("cleanup", "Failed to prune stale registrations", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if count > 0 {
		log.LogInfoWithFields("cleanup", "Pruned stale push registrations", map[string]any{
			"count": count,
		})
	}
}
