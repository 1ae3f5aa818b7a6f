package authflows

import (
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func TestValidateDefaults(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero verification ttl", func(c *Config) { c.Tokens.VerificationTTL = 0 }},
		{"zero reset ttl", func(c *Config) { c.Tokens.ResetTTL = 0 }},
		{"negative retention", func(c *Config) { c.Tokens.ExpiredRetention = -time.Hour }},
		{"zero code ttl", func(c *Config) { c.TwoFactor.CodeTTL = 0 }},
		{"otp too short", func(c *Config) { c.TwoFactor.OTPDigits = 4 }},
		{"otp too long", func(c *Config) { c.TwoFactor.OTPDigits = 12 }},
		{"low memory", func(c *Config) { c.Password.Memory = 1024 }},
		{"zero min length", func(c *Config) { c.Password.MinLength = 0 }},
		{"empty base url", func(c *Config) { c.Mail.AppBaseURL = "" }},
		{"relative verification path", func(c *Config) { c.Mail.VerificationPath = "verify" }},
		{"relative reset path", func(c *Config) { c.Mail.ResetPath = "reset" }},
		{"zero session lifetime", func(c *Config) { c.Session.Lifetime = 0 }},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"unknown signing method", func(c *Config) { c.JWT.SigningMethod = "none" }},
		{"hs256 without secret", func(c *Config) { c.JWT.PrivateKey = nil }},
		{"ed25519 without keys", func(c *Config) {
			c.JWT.SigningMethod = "ed25519"
			c.JWT.PrivateKey = nil
			c.JWT.PublicKey = nil
		}},
		{"zero email length", func(c *Config) { c.Account.MaxEmailLength = 0 }},
		{"zero name length", func(c *Config) { c.Account.MaxNameLength = 0 }},
		{"audit enabled without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}

func TestCloneConfigCopiesKeys(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	clone.JWT.PrivateKey[0] ^= 0xFF
	if cfg.JWT.PrivateKey[0] == clone.JWT.PrivateKey[0] {
		t.Fatal("expected key material to be deep-copied")
	}
}

func TestDefaultConfigIsIndependent(t *testing.T) {
	first := DefaultConfig()
	first.Tokens.VerificationTTL = time.Minute

	second := DefaultConfig()
	if second.Tokens.VerificationTTL == time.Minute {
		t.Fatal("expected DefaultConfig to return independent values")
	}
}
