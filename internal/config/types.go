package config

import (
	"encoding/json"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// StorageKind selects the persistence backend for overrides and registrations
type StorageKind string

const (
	StorageKindMemory    StorageKind = "memory"
	StorageKindFirestore StorageKind = "firestore"
)

// ProviderConfig holds the connection parameters for the backend provider.
// Field names mirror the provider's web client configuration object.
type ProviderConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
	MeasurementID     string `json:"measurementId,omitempty"`
	VAPIDKey          string `json:"vapidKey,omitempty"`
}

// MissingRequiredFields returns the names of required fields that are empty.
// A config is usable only when apiKey, authDomain, and projectId are set.
func (c ProviderConfig) MissingRequiredFields() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if c.AuthDomain == "" {
		missing = append(missing, "authDomain")
	}
	if c.ProjectID == "" {
		missing = append(missing, "projectId")
	}
	return missing
}

// HasRequiredFields reports whether the config is usable
func (c ProviderConfig) HasRequiredFields() bool {
	return len(c.MissingRequiredFields()) == 0
}

// ServerConfig holds the HTTP-facing settings
type ServerConfig struct {
	Addr    string `json:"addr"`
	BaseURL string `json:"baseURL"`

	// Federated sign-in client registered with the identity provider
	GoogleClientID     string `json:"googleClientId,omitempty"`
	GoogleClientSecret Secret `json:"googleClientSecret,omitempty"`

	// Key for HMAC-signing session cookies and OAuth state
	SigningKey Secret `json:"signingKey,omitempty"`
}

// Config is the complete application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Provider ProviderConfig `json:"provider"`

	// Storage selects where config overrides, saved auth domains, and push
	// token registrations live
	Storage StorageKind `json:"storage,omitempty"`

	// Service account credentials for the admin SDK and Firestore. Optional:
	// without it the app runs with memory storage and mocked sends.
	CredentialsFile string `json:"credentialsFile,omitempty"`
}
