package internal

import (
	"strings"
	"testing"
)

func TestSessionIDRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}

	encoded := sid.String()
	if strings.ContainsAny(encoded, "+/=") {
		t.Fatalf("expected base64url without padding, got %q", encoded)
	}

	parsed, err := ParseSessionID(encoded)
	if err != nil {
		t.Fatalf("ParseSessionID failed: %v", err)
	}
	if parsed != sid {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, sid)
	}
}

func TestParseSessionIDRejectsBadInput(t *testing.T) {
	for _, bad := range []string{"", "!!!", "c2hvcnQ", strings.Repeat("A", 64)} {
		if _, err := ParseSessionID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewTokenValueIsUnique(t *testing.T) {
	first, err := NewTokenValue()
	if err != nil {
		t.Fatalf("NewTokenValue failed: %v", err)
	}
	second, err := NewTokenValue()
	if err != nil {
		t.Fatalf("NewTokenValue failed: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct token values")
	}
	if len(first) != 43 {
		t.Fatalf("expected 43 encoded characters for 32 bytes, got %d", len(first))
	}
}

func TestNewOTP(t *testing.T) {
	for _, digits := range []int{6, 8, 10} {
		otp, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d) failed: %v", digits, err)
		}
		if len(otp) != digits {
			t.Fatalf("expected %d digits, got %q", digits, otp)
		}
		for _, c := range otp {
			if c < '0' || c > '9' {
				t.Fatalf("expected numeric OTP, got %q", otp)
			}
		}
	}
}

func TestNewOTPRejectsBadLengths(t *testing.T) {
	for _, digits := range []int{0, 5, 11} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("expected error for %d digits", digits)
		}
	}
}
