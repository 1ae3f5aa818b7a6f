package authflows

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authflows APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Tokens     TokensConfig
	TwoFactor  TwoFactorConfig
	Password   PasswordConfig
	Mail       MailConfig
	Session    SessionConfig
	JWT        JWTConfig
	Account    AccountConfig
	TokenStore TokenStoreConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokensConfig controls the lifetimes of link-style single-use tokens.
// ExpiredRetention is how long an expired record stays readable so
// validators can report "expired" instead of "not found".
type TokensConfig struct {
	VerificationTTL  time.Duration
	ResetTTL         time.Duration
	ExpiredRetention time.Duration
}

// TwoFactorConfig defines a public type used by authflows APIs.
//
// TwoFactorConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TwoFactorConfig struct {
	CodeTTL   time.Duration
	OTPDigits int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authflows APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	MinLength      int
	UpgradeOnLogin bool
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig controls how confirmation links are built. Paths are
// appended to AppBaseURL with the token value in the "token" query
// parameter.
type MailConfig struct {
	AppBaseURL       string
	VerificationPath string
	ResetPath        string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authflows APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	Lifetime    time.Duration
}

// JWTConfig defines a public type used by authflows APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// AccountConfig defines a public type used by authflows APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	MaxEmailLength int
	MaxNameLength  int
}

// TokenStoreConfig defines a public type used by authflows APIs.
//
// TokenStoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenStoreConfig struct {
	RedisPrefix string
}

// AuditConfig defines a public type used by authflows APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authflows APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Tokens: TokensConfig{
			VerificationTTL:  time.Hour,
			ResetTTL:         time.Hour,
			ExpiredRetention: 24 * time.Hour,
		},
		TwoFactor: TwoFactorConfig{
			CodeTTL:   5 * time.Minute,
			OTPDigits: 6,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinLength:      6,
			UpgradeOnLogin: true,
		},
		Mail: MailConfig{
			AppBaseURL:       "http://localhost:3000",
			VerificationPath: "/auth/new-verification",
			ResetPath:        "/auth/new-password",
		},
		Session: SessionConfig{
			RedisPrefix: "af",
			Lifetime:    7 * 24 * time.Hour,
		},
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			SigningMethod: "ed25519",
		},
		Account: AccountConfig{
			MaxEmailLength: 254,
			MaxNameLength:  128,
		},
		TokenStore: TokenStoreConfig{
			RedisPrefix: "aft",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the baseline configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Tokens
	if c.Tokens.VerificationTTL <= 0 {
		return errors.New("Tokens VerificationTTL must be > 0")
	}
	if c.Tokens.ResetTTL <= 0 {
		return errors.New("Tokens ResetTTL must be > 0")
	}
	if c.Tokens.ExpiredRetention < 0 {
		return errors.New("Tokens ExpiredRetention must be >= 0")
	}

	// Two-factor
	if c.TwoFactor.CodeTTL <= 0 {
		return errors.New("TwoFactor CodeTTL must be > 0")
	}
	if c.TwoFactor.OTPDigits < 6 || c.TwoFactor.OTPDigits > 10 {
		return errors.New("TwoFactor OTPDigits must be between 6 and 10")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}

	// Mail
	if c.Mail.AppBaseURL == "" {
		return errors.New("Mail AppBaseURL is required")
	}
	if !strings.HasPrefix(c.Mail.VerificationPath, "/") {
		return errors.New("Mail VerificationPath must start with /")
	}
	if !strings.HasPrefix(c.Mail.ResetPath, "/") {
		return errors.New("Mail ResetPath must start with /")
	}

	// Session
	if c.Session.Lifetime <= 0 {
		return errors.New("Session Lifetime must be > 0")
	}

	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.SigningMethod != "ed25519" && c.JWT.SigningMethod != "hs256" {
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}

	// Account
	if c.Account.MaxEmailLength <= 0 {
		return errors.New("Account MaxEmailLength must be > 0")
	}
	if c.Account.MaxNameLength <= 0 {
		return errors.New("Account MaxNameLength must be > 0")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
