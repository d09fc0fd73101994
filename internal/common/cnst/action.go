package cnst

import "strings"

// Action represents an audited action kind
type Action string

const (
	// ActionCreate represents a create action
	ActionCreate Action = "create"
	// ActionUpdate represents an update action
	ActionUpdate Action = "update"
	// ActionDelete represents a delete action
	ActionDelete Action = "delete"
	// ActionRead represents a single-item read action
	ActionRead Action = "read"
	// ActionList represents a listing action; listing entries are never persisted
	ActionList Action = "list"
	// ActionLogin represents a successful login
	ActionLogin Action = "login"
	// ActionLogout represents a logout
	ActionLogout Action = "logout"
	// ActionLoginFailed represents a rejected login attempt
	ActionLoginFailed Action = "login-failed"
	// ActionLoginError represents an unexpected failure during login
	ActionLoginError Action = "login-error"
	// ActionAuthFailed represents a request without a usable credential
	ActionAuthFailed Action = "auth-failed"
	// ActionAuthDenied represents a role-based denial
	ActionAuthDenied Action = "auth-denied"
	// ActionAuthExpired represents an expired token
	ActionAuthExpired Action = "auth-expired"
	// ActionAuthInvalid represents a malformed or badly signed token
	ActionAuthInvalid Action = "auth-invalid"
	// ActionAuthError represents an unexpected authentication failure
	ActionAuthError Action = "auth-error"
	// ActionResetPassword represents a password reset performed by a manager
	ActionResetPassword Action = "reset-password"
	// ActionRecoverPassword represents a password recovery email being sent
	ActionRecoverPassword Action = "recover-password"
	// ActionRefreshToken represents a token renewal
	ActionRefreshToken Action = "refresh-token"
)

// baseActions is the closed vocabulary accepted from the external logging endpoint.
var baseActions = map[Action]struct{}{
	ActionCreate:          {},
	ActionUpdate:          {},
	ActionDelete:          {},
	ActionRead:            {},
	ActionList:            {},
	ActionLogin:           {},
	ActionLogout:          {},
	ActionLoginFailed:     {},
	ActionLoginError:      {},
	ActionAuthFailed:      {},
	ActionAuthDenied:      {},
	ActionAuthExpired:     {},
	ActionAuthInvalid:     {},
	ActionAuthError:       {},
	ActionResetPassword:   {},
	ActionRecoverPassword: {},
	ActionRefreshToken:    {},
}

// Valid reports whether a is part of the audit vocabulary. Derived
// "-failed" and "-error" forms of a base action are valid too.
func (a Action) Valid() bool {
	if _, ok := baseActions[a]; ok {
		return true
	}
	s := string(a)
	for _, suffix := range []string{"-failed", "-error"} {
		if base, ok := strings.CutSuffix(s, suffix); ok {
			if _, ok := baseActions[Action(base)]; ok {
				return true
			}
		}
	}
	return false
}

// Listing reports whether a denotes a read-enumeration action.
// Listing entries are suppressed to keep read-heavy routes from
// flooding the audit log.
func (a Action) Listing() bool {
	return a == ActionList || strings.HasPrefix(string(a), "list-")
}

// Failed returns the "-failed" variant of a.
func (a Action) Failed() Action {
	return a + "-failed"
}

// Errored returns the "-error" variant of a.
func (a Action) Errored() Action {
	return a + "-error"
}
