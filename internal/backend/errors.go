package backend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMessagingUnavailable is the sentinel returned by Messaging when no
// document context is attached. Not an error condition for callers that
// probe availability; flows treat it as "skip push features".
var ErrMessagingUnavailable = errors.New("messaging is unavailable outside a document context")

// ConfigurationError reports that required provider config fields are absent
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider configuration is missing required fields: %s", strings.Join(e.Missing, ", "))
}

// BootstrapError wraps a backend client construction failure
type BootstrapError struct {
	Err error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("backend client bootstrap failed: %v", e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Credential error codes, normalized from the identity provider's responses
const (
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeInvalidEmail      = "invalid-email"
	CodeInvalidCredential = "invalid-credential"
	CodeEmailAlreadyInUse = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeUserDisabled      = "user-disabled"
)

// CredentialError reports a failed credential sign-in or sign-up, subdivided
// by the provider's error code.
type CredentialError struct {
	Code    string
	Message string
}

func (e *CredentialError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsCredentialError unwraps err into a CredentialError, or nil
func AsCredentialError(err error) *CredentialError {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
