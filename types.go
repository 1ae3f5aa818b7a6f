package authflows

import (
	"context"
	"time"
)

// UserProvider is the primary interface that callers must implement to
// integrate authflows with their user database. It covers account
// lookup, account creation, password updates, and the lifecycle
// timestamps driven by token confirmation flows.
//
// Lookup methods must return an error for unknown accounts; the engine
// maps any lookup failure to [ErrUserNotFound]. Mutation failures are
// wrapped onto [ErrProviderUnavailable].
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	MarkTwoFactorVerified(ctx context.Context, userID string, at time.Time) error
	UpdateUser(ctx context.Context, userID string, changes UserChanges) (UserRecord, error)
}

// UserRecord is the full account record returned by [UserProvider].
// Zero timestamps mean "never". A record with an empty PasswordHash is
// a federated account without local credentials.
type UserRecord struct {
	UserID              string
	Email               string
	Name                string
	PasswordHash        string
	EmailVerifiedAt     int64
	TwoFactorEnabled    bool
	TwoFactorVerifiedAt int64
}

// EmailVerified reports whether the account confirmed its address.
func (u UserRecord) EmailVerified() bool {
	return u.EmailVerifiedAt > 0
}

// CreateUserInput is the input for [UserProvider.CreateUser]. New
// accounts always start unverified.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

// UserChanges is a partial update for [UserProvider.UpdateUser]. Nil
// fields are left untouched. Email is deliberately absent: the address
// is immutable through the settings surface.
type UserChanges struct {
	Name             *string
	TwoFactorEnabled *bool
	PasswordHash     *string
}

// RegisterInput is the input for [Engine.Register].
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult is returned by [Engine.Register]. NotificationFailed
// is set when the account was created but the verification mail could
// not be delivered; the caller may offer a resend.
type RegisterResult struct {
	UserID             string
	NotificationFailed bool
}

// LoginStatus describes the non-error outcomes of [Engine.Login].
type LoginStatus int

const (
	// LoginOK is an exported constant or variable used by the authentication engine.
	LoginOK LoginStatus = iota
	// LoginVerificationResent is an exported constant or variable used by the authentication engine.
	LoginVerificationResent
	// LoginTwoFactorRequired is an exported constant or variable used by the authentication engine.
	LoginTwoFactorRequired
)

// LoginInput is the input for [Engine.Login]. TwoFactorCode is empty on
// the first step of a two-factor login.
type LoginInput struct {
	Email         string
	Password      string
	TwoFactorCode string
}

// LoginResult is returned by [Engine.Login]. AccessToken and SessionID
// are set only when Status is [LoginOK]. NotificationFailed records a
// failed verification resend on the [LoginVerificationResent] path.
type LoginResult struct {
	Status             LoginStatus
	AccessToken        string
	SessionID          string
	NotificationFailed bool
}

// UpdateSettingsInput is a partial settings update. CurrentPassword and
// NewPassword must be provided together; the email address cannot be
// changed here.
type UpdateSettingsInput struct {
	Name             *string
	TwoFactorEnabled *bool
	CurrentPassword  *string
	NewPassword      *string
}

// AuthUser is the session-backed account projection returned by
// [Engine.CurrentUser].
type AuthUser struct {
	UserID           string
	Email            string
	Name             string
	EmailVerified    bool
	TwoFactorEnabled bool
	SessionID        string
}
