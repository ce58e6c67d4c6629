package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the config file and fills provider defaults from the
// environment. The VAPID public key is deliberately environment-only: it is
// injected at deploy time, never checked into a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	applyEnvDefaults(&config)

	if err := Validate(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// applyEnvDefaults fills empty fields from the process environment
func applyEnvDefaults(config *Config) {
	setIfEmpty(&config.Provider.APIKey, "FIREBASE_API_KEY")
	setIfEmpty(&config.Provider.AuthDomain, "FIREBASE_AUTH_DOMAIN")
	setIfEmpty(&config.Provider.ProjectID, "FIREBASE_PROJECT_ID")
	setIfEmpty(&config.Provider.StorageBucket, "FIREBASE_STORAGE_BUCKET")
	setIfEmpty(&config.Provider.MessagingSenderID, "FIREBASE_MESSAGING_SENDER_ID")
	setIfEmpty(&config.Provider.AppID, "FIREBASE_APP_ID")
	setIfEmpty(&config.Provider.MeasurementID, "FIREBASE_MEASUREMENT_ID")
	setIfEmpty(&config.Provider.VAPIDKey, "FIREBASE_VAPID_KEY")

	setIfEmpty(&config.Server.GoogleClientID, "GOOGLE_CLIENT_ID")
	if config.Server.GoogleClientSecret == "" {
		config.Server.GoogleClientSecret = Secret(os.Getenv("GOOGLE_CLIENT_SECRET"))
	}
	if config.Server.SigningKey == "" {
		config.Server.SigningKey = Secret(os.Getenv("SIGNING_KEY"))
	}
	setIfEmpty(&config.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
}

func setIfEmpty(field *string, envName string) {
	if *field == "" {
		*field = os.Getenv(envName)
	}
}

// Validate checks the resolved configuration
func Validate(config *Config) error {
	if config.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if config.Server.BaseURL == "" {
		return fmt.Errorf("server.baseURL is required")
	}

	switch config.Storage {
	case "", StorageKindMemory:
		config.Storage = StorageKindMemory
	case StorageKindFirestore:
		if config.Provider.ProjectID == "" {
			return fmt.Errorf("provider.projectId is required for firestore storage")
		}
	default:
		return fmt.Errorf("unknown storage kind: %s", config.Storage)
	}

	if config.Server.GoogleClientID != "" && config.Server.SigningKey == "" {
		return fmt.Errorf("server.signingKey is required when federated sign-in is configured")
	}

	return nil
}
