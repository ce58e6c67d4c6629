// Package push drives push-notification enablement: the permission prompt,
// the token exchange, and the foreground message feed shown on the
// dashboard.
package push

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/platform"
	"github.com/google/uuid"
)

// ErrPermissionDenied is returned when the user does not grant the
// notification permission.
var ErrPermissionDenied = errors.New("notification permission was not granted")

// ErrTokenUnavailable is returned when the token exchange cannot produce a
// delivery token, including the empty-token-without-error case.
var ErrTokenUnavailable = errors.New("push token is unavailable")

// TokenSource exchanges a push subscription for a delivery token
type TokenSource interface {
	ExchangeToken(ctx context.Context, sub platform.PushSubscription, vapidKey string) (string, error)
}

// NotificationRecord is a received foreground notification, newest first in
// the flow's list.
type NotificationRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"timestamp"`
}

// Toast is a transient advisory mirrored to the user
type Toast struct {
	Title       string
	Description string
	Destructive bool
}

// Config wires a Flow's collaborators
type Config struct {
	Capabilities platform.Capabilities
	Tokens       TokenSource
	Bridge       *Bridge

	// ProviderConfig resolves the active provider config; the flow reads
	// the VAPID key from it on each start
	ProviderConfig func(ctx context.Context) (config.ProviderConfig, error)

	// Register reports the obtained token to the relay. Optional; failures
	// are logged, not fatal, matching the endpoint's placeholder contract.
	Register func(ctx context.Context, token string) error

	// Notify surfaces a transient toast. Optional.
	Notify func(Toast)
}

// Flow runs push enablement and collects foreground notifications. Start is
// re-entrant; a restart re-runs every step and replaces the foreground
// subscription while keeping already received notifications.
type Flow struct {
	caps     platform.Capabilities
	tokens   TokenSource
	bridge   *Bridge
	provider func(ctx context.Context) (config.ProviderConfig, error)
	register func(ctx context.Context, token string) error
	notify   func(Toast)

	mu          sync.Mutex
	token       string
	permission  platform.Permission
	fault       string
	records     []NotificationRecord
	unsubscribe func()
}

// NewFlow creates a push flow
func NewFlow(cfg Config) *Flow {
	f := &Flow{
		caps:     cfg.Capabilities,
		tokens:   cfg.Tokens,
		bridge:   cfg.Bridge,
		provider: cfg.ProviderConfig,
		register: cfg.Register,
		notify:   cfg.Notify,
	}
	if f.notify == nil {
		f.notify = func(Toast) {}
	}
	return f
}

// Start runs the enablement steps in order: worker support, messaging
// availability, the permission prompt, the VAPID key check, the token
// exchange, and finally the foreground subscription. Each gate records a
// user-facing fault before returning.
func (f *Flow) Start(ctx context.Context) error {
	f.setFault("")

	if !f.caps.SupportsBackgroundWorkers() {
		// Mirrors the silent no-op when service workers are absent
		log.LogDebug("push enablement skipped: no background worker support")
		return nil
	}

	f.setPermission(f.caps.CurrentNotificationPermission())

	if !f.caps.HasDocument() {
		f.setFault("Firebase messaging is not available. Make sure your Firebase configuration includes messaging.")
		return nil
	}

	permission, err := f.caps.RequestNotificationPermission(ctx)
	if err != nil {
		f.setFault(fmt.Sprintf("Error initializing FCM: %v", err))
		return err
	}
	f.setPermission(permission)

	if permission != platform.PermissionGranted {
		f.setFault("Notification permission was not granted. Please enable notifications in your browser settings.")
		return ErrPermissionDenied
	}

	cfg, err := f.provider(ctx)
	if err != nil {
		f.setFault(fmt.Sprintf("Error initializing FCM: %v", err))
		return err
	}
	if cfg.VAPIDKey == "" {
		f.setFault("VAPID key is missing. You need to generate a VAPID key in Firebase Console.")
		return ErrTokenUnavailable
	}

	sub, err := f.caps.PushSubscription(ctx)
	if err != nil || sub == nil {
		f.setFault("Could not get FCM token. Make sure your Firebase configuration is correct.")
		return ErrTokenUnavailable
	}

	token, err := f.tokens.ExchangeToken(ctx, *sub, cfg.VAPIDKey)
	if err != nil {
		f.setFault(fmt.Sprintf("Error getting FCM token: %v", err))
		f.notify(Toast{
			Title:       "FCM Token Error",
			Description: "Could not get FCM token. VAPID key may be missing.",
			Destructive: true,
		})
		return fmt.Errorf("exchanging push token: %w", err)
	}
	if token == "" {
		f.setFault("Could not get FCM token. Make sure your Firebase configuration is correct.")
		return ErrTokenUnavailable
	}

	f.mu.Lock()
	f.token = token
	f.mu.Unlock()

	f.notify(Toast{Title: "Notifications Enabled", Description: "You will now receive push notifications"})

	if f.register != nil {
		if err := f.register(ctx, token); err != nil {
			log.LogWarn("failed to register push token with relay: %v", err)
		}
	}

	f.resubscribe()
	return nil
}

// Token returns the current delivery token, empty before enablement
func (f *Flow) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// Permission returns the last observed notification permission
func (f *Flow) Permission() platform.Permission {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.permission == "" {
		return platform.PermissionDefault
	}
	return f.permission
}

// Fault returns the user-facing enablement fault, empty when healthy
func (f *Flow) Fault() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fault
}

// Notifications returns received foreground notifications, newest first
func (f *Flow) Notifications() []NotificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]NotificationRecord, len(f.records))
	copy(out, f.records)
	return out
}

// Stop drops the foreground subscription
func (f *Flow) Stop() {
	f.mu.Lock()
	unsub := f.unsubscribe
	f.unsubscribe = nil
	f.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (f *Flow) resubscribe() {
	f.mu.Lock()
	old := f.unsubscribe
	f.mu.Unlock()
	if old != nil {
		old()
	}

	unsub := f.bridge.Subscribe(f.receive)
	f.mu.Lock()
	f.unsubscribe = unsub
	f.mu.Unlock()
}

// receive prepends the message to the notification list and mirrors it as a
// toast.
func (f *Flow) receive(msg Message) {
	record := NotificationRecord{
		ID:         uuid.NewString(),
		Title:      msg.Title,
		Body:       msg.Body,
		ReceivedAt: time.Now(),
	}
	if record.Title == "" {
		record.Title = "New Notification"
	}
	if record.Body == "" {
		record.Body = "You have a new notification"
	}

	f.mu.Lock()
	f.records = append([]NotificationRecord{record}, f.records...)
	f.mu.Unlock()

	f.notify(Toast{Title: record.Title, Description: record.Body})
}

func (f *Flow) setFault(fault string) {
	f.mu.Lock()
	f.fault = fault
	f.mu.Unlock()
}

func (f *Flow) setPermission(p platform.Permission) {
	f.mu.Lock()
	f.permission = p
	f.mu.Unlock()
}
