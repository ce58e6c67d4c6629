// Package platform abstracts execution-environment capabilities: document
// context, background worker support, and the notification permission
// prompt. Flows take a Capabilities value instead of probing ambient globals
// so they can run under test with deterministic answers.
package platform

import "context"

// Permission is the notification permission state
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// PushSubscription is the web push subscription handed over by the client,
// exchanged together with the VAPID public key for a delivery token.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Capabilities answers environment feature checks for the flows
type Capabilities interface {
	// HasDocument reports whether a browser/document context is attached
	HasDocument() bool

	// SupportsBackgroundWorkers reports service-worker availability
	SupportsBackgroundWorkers() bool

	// SupportsAnalytics reports whether the analytics subsystem can run
	SupportsAnalytics(ctx context.Context) (bool, error)

	// CurrentNotificationPermission returns the permission state without
	// prompting
	CurrentNotificationPermission() Permission

	// RequestNotificationPermission prompts the user and suspends until
	// they answer
	RequestNotificationPermission(ctx context.Context) (Permission, error)

	// PushSubscription returns the environment's push subscription, nil
	// when the environment cannot produce one
	PushSubscription(ctx context.Context) (*PushSubscription, error)
}

// Fixed is a Capabilities implementation with predetermined answers. The
// server wires one per request from client-reported state; tests construct
// them directly.
type Fixed struct {
	Document     bool
	Workers      bool
	Analytics    bool
	Permission   Permission
	Subscription *PushSubscription

	// PromptResult is returned by RequestNotificationPermission; when
	// empty, the prompt leaves Permission unchanged
	PromptResult Permission
	PromptErr    error
}

var _ Capabilities = (*Fixed)(nil)

func (f *Fixed) HasDocument() bool               { return f.Document }
func (f *Fixed) SupportsBackgroundWorkers() bool { return f.Workers }

func (f *Fixed) SupportsAnalytics(ctx context.Context) (bool, error) {
	return f.Analytics, nil
}

func (f *Fixed) CurrentNotificationPermission() Permission {
	if f.Permission == "" {
		return PermissionDefault
	}
	return f.Permission
}

func (f *Fixed) RequestNotificationPermission(ctx context.Context) (Permission, error) {
	if f.PromptErr != nil {
		return "", f.PromptErr
	}
	if f.PromptResult != "" {
		f.Permission = f.PromptResult
	}
	return f.CurrentNotificationPermission(), nil
}

func (f *Fixed) PushSubscription(ctx context.Context) (*PushSubscription, error) {
	return f.Subscription, nil
}
