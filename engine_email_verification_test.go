package authflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OrionVault/authflows/internal/stores"
)

func TestConfirmEmailVerificationSuccess(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	engine := newTestEngine(t, rdb, up, nil)
	user := seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice"}, "correct-horse")

	issueTestToken(t, engine, stores.KindVerification, "alice@example.com", "tok-value", time.Now().Add(time.Hour).Unix())

	if err := engine.ConfirmEmailVerification(context.Background(), "tok-value"); err != nil {
		t.Fatalf("ConfirmEmailVerification failed: %v", err)
	}

	if !up.users[user.UserID].EmailVerified() {
		t.Fatal("expected the account to be verified")
	}

	// Single use: the same value never verifies twice.
	err := engine.ConfirmEmailVerification(context.Background(), "tok-value")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound on replay, got %v", err)
	}
	if up.markVerifiedCalls != 1 {
		t.Fatalf("expected exactly one MarkEmailVerified call, got %d", up.markVerifiedCalls)
	}
}

func TestConfirmEmailVerificationMissingToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, &mockUserProvider{}, nil)

	if err := engine.ConfirmEmailVerification(context.Background(), ""); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestConfirmEmailVerificationUnknownToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, &mockUserProvider{}, nil)

	err := engine.ConfirmEmailVerification(context.Background(), "never-issued")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestConfirmEmailVerificationExpiredToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	engine := newTestEngine(t, rdb, up, nil)
	seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice"}, "correct-horse")

	issueTestToken(t, engine, stores.KindVerification, "alice@example.com", "stale", time.Now().Add(-time.Minute).Unix())

	err := engine.ConfirmEmailVerification(context.Background(), "stale")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if up.markVerifiedCalls != 0 {
		t.Fatal("expired tokens must not verify")
	}

	// Expired records are pruned on the failed attempt.
	err = engine.ConfirmEmailVerification(context.Background(), "stale")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound after prune, got %v", err)
	}
}

func TestConfirmEmailVerificationOwnerDeleted(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, &mockUserProvider{}, nil)

	issueTestToken(t, engine, stores.KindVerification, "ghost@example.com", "orphan", time.Now().Add(time.Hour).Unix())

	err := engine.ConfirmEmailVerification(context.Background(), "orphan")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerificationTokenSupersededOnReissue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	mailer := &mockMailer{}
	engine := newTestEngine(t, rdb, up, mailer)
	seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice"}, "correct-horse")

	issueTestToken(t, engine, stores.KindVerification, "alice@example.com", "first", time.Now().Add(time.Hour).Unix())

	// An unverified login re-issues the verification token, which must
	// supersede the first one.
	result, err := engine.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "correct-horse"})
	if err != nil || result.Status != LoginVerificationResent {
		t.Fatalf("expected verification resend, got %+v, %v", result, err)
	}

	err = engine.ConfirmEmailVerification(context.Background(), "first")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected superseded token to be gone, got %v", err)
	}
}
