package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when no handle exists yet (identity SDK still loading).
	ErrNotReady = errors.New("le script Google n'est pas encore chargé, veuillez patienter")

	// ErrConsentInFlight is returned by TriggerLogin while a previous attempt is pending.
	ErrConsentInFlight = errors.New("a consent attempt is already in progress")

	// ErrConsentAbandoned resolves an attempt that was superseded or timed out.
	ErrConsentAbandoned = errors.New("consent attempt abandoned")

	// ErrUnknownAttempt is returned when a callback names no pending attempt.
	ErrUnknownAttempt = errors.New("unknown or expired consent attempt")
)

// Identity provider error types.
const (
	ErrorTypePopupClosed  = "popup_closed_by_user"
	ErrorTypeAccessDenied = "access_denied"
	ErrorTypeExchange     = "token_exchange_failed"
)

// AuthError is the {type, message} error reported by the identity provider.
type AuthError struct {
	Type    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return e.Type
	}
	return e.Type + " - " + e.Message
}

// Declined reports whether the user dismissed the consent UI. With a redirect
// flow this also happens when the origin is not allow-listed.
func (e *AuthError) Declined() bool {
	return e.Type == ErrorTypePopupClosed || e.Type == ErrorTypeAccessDenied
}

// UserMessage is the text shown to the owner. Declined consents get the
// remediation naming the exact origin to authorize.
func (e *AuthError) UserMessage(origin string) string {
	if e.Declined() {
		return fmt.Sprintf("La fenêtre a été fermée. Vérifiez que l'URL %s est bien ajoutée dans les "+
			"\"Origines JavaScript autorisées\" de votre console Google Cloud.", origin)
	}
	return "Erreur d'authentification Google : " + e.Error()
}

// AsAuthError extracts an *AuthError from err.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
