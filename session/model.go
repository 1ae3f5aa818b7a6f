package session

// Session is one active login. The account fields are a cached
// projection; callers refresh them when the underlying account changes.
type Session struct {
	SessionID string
	UserID    string
	Email     string
	Name      string

	TwoFactorEnabled bool
	EmailVerifiedAt  int64

	CreatedAt int64
	ExpiresAt int64
}
