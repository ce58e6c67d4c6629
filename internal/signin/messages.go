package signin

import (
	"fmt"

	"github.com/dgellow/firebase-front/internal/backend"
	"github.com/dgellow/firebase-front/internal/idp"
)

// advisory copy shown for sign-in failures, keyed by normalized error code

func credentialSignInMessage(code string) string {
	switch code {
	case backend.CodeUserNotFound, backend.CodeWrongPassword:
		return "Invalid email or password. Please try again."
	case backend.CodeInvalidEmail:
		return "Invalid email format. Please enter a valid email."
	case backend.CodeInvalidCredential:
		return "Invalid credentials. Please check your email and password."
	default:
		return "Failed to sign in. Please check your credentials."
	}
}

func credentialSignUpMessage(code string) string {
	switch code {
	case backend.CodeEmailAlreadyInUse:
		return "This email is already in use. Please try another email or sign in."
	case backend.CodeInvalidEmail:
		return "Invalid email format. Please enter a valid email."
	case backend.CodeWeakPassword:
		return "Password is too weak. Please use a stronger password."
	default:
		return "Failed to create account."
	}
}

// federatedMessages returns the transient toast message and, for
// configuration-class errors that need an out-of-band fix, a persistent
// advisory with remediation steps.
func federatedMessages(code, domain string) (toast string, advisory string) {
	switch code {
	case idp.CodeConfigurationNotFound:
		return "Google authentication is not configured in your Firebase project.",
			"Google Sign-In is not enabled in your Firebase project. Please enable it in the Firebase Console under Authentication > Sign-in method > Google."
	case idp.CodeUnauthorizedDomain:
		return fmt.Sprintf("The domain %q is not authorized for OAuth operations.", domain),
			fmt.Sprintf("Your current domain %q is not authorized for Google Sign-In. Add this domain to your authorized domains list in Firebase Console under Authentication > Settings > Authorized domains.", domain)
	case idp.CodePopupClosedByUser:
		return "Sign-in popup was closed. Please try again.", ""
	case idp.CodeCancelledPopupRequest:
		return "Multiple popup requests. Please try again.", ""
	case idp.CodePopupBlocked:
		return "Popup was blocked by your browser. Please allow popups for this site.", ""
	default:
		return "Failed to sign in with Google.", ""
	}
}

const previewAdvisoryMessage = "Google Sign-In is not available in preview environments due to Firebase security restrictions. Please use email/password authentication instead."

// MessageForSignIn returns the user-facing text for a failed credential
// sign-in error.
func MessageForSignIn(err error) string {
	code := ""
	if credErr := backend.AsCredentialError(err); credErr != nil {
		code = credErr.Code
	}
	return credentialSignInMessage(code)
}

// MessageForSignUp returns the user-facing text for a failed sign-up error
func MessageForSignUp(err error) string {
	code := ""
	if credErr := backend.AsCredentialError(err); credErr != nil {
		code = credErr.Code
	}
	return credentialSignUpMessage(code)
}

// MessageForFederated returns the user-facing text for a failed federated
// sign-in error.
func MessageForFederated(err error, domain string) string {
	code := ""
	if fe := idp.AsFederatedError(err); fe != nil {
		code = fe.Code
	}
	toast, _ := federatedMessages(code, domain)
	return toast
}
