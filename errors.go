package authflows

import "errors"

var (
	// ErrInvalidInput is an exported constant or variable used by the authentication engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailExists is an exported constant or variable used by the authentication engine.
	ErrEmailExists = errors.New("email already in use")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenMissing is an exported constant or variable used by the authentication engine.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenNotFound is an exported constant or variable used by the authentication engine.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTwoFactorCodeNotFound is an exported constant or variable used by the authentication engine.
	ErrTwoFactorCodeNotFound = errors.New("two-factor code not found")
	// ErrTwoFactorCodeMismatch is an exported constant or variable used by the authentication engine.
	ErrTwoFactorCodeMismatch = errors.New("two-factor code mismatch")
	// ErrTwoFactorCodeExpired is an exported constant or variable used by the authentication engine.
	ErrTwoFactorCodeExpired = errors.New("two-factor code expired")
	// ErrIncorrectPassword is an exported constant or variable used by the authentication engine.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrNoActiveSession is an exported constant or variable used by the authentication engine.
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionNotFound is an exported constant or variable used by the authentication engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMailDeliveryFailed is an exported constant or variable used by the authentication engine.
	ErrMailDeliveryFailed = errors.New("mail delivery failed")
	// ErrTokenStoreUnavailable is an exported constant or variable used by the authentication engine.
	ErrTokenStoreUnavailable = errors.New("token store unavailable")
	// ErrSessionStoreUnavailable is an exported constant or variable used by the authentication engine.
	ErrSessionStoreUnavailable = errors.New("session store unavailable")
	// ErrProviderUnavailable is an exported constant or variable used by the authentication engine.
	ErrProviderUnavailable = errors.New("user provider unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
