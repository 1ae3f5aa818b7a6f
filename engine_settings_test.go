package authflows

import (
	"context"
	"errors"
	"testing"
	"time"
)

func settingsTestLogin(t *testing.T, engine *Engine, email, pass string) LoginResult {
	t.Helper()

	result, err := engine.Login(context.Background(), LoginInput{Email: email, Password: pass})
	if err != nil || result.Status != LoginOK {
		t.Fatalf("seed login failed: %+v, %v", result, err)
	}
	return result
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestUpdateSettingsRequiresSession(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, &mockUserProvider{}, nil)

	_, err := engine.UpdateSettings(context.Background(), "", UpdateSettingsInput{Name: strPtr("Mallory")})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	_, err = engine.UpdateSettings(context.Background(), "not-a-jwt", UpdateSettingsInput{})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestUpdateSettingsNameRefreshesProjection(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	engine := newTestEngine(t, rdb, up, nil)
	user := seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice", EmailVerifiedAt: time.Now().Unix()}, "correct-horse")

	login := settingsTestLogin(t, engine, "alice@example.com", "correct-horse")

	updated, err := engine.UpdateSettings(context.Background(), login.AccessToken, UpdateSettingsInput{
		Name: strPtr("Alice Cooper"),
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if updated.Name != "Alice Cooper" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if up.users[user.UserID].Name != "Alice Cooper" {
		t.Fatal("provider record not updated")
	}

	// The cached session projection must reflect the change.
	current, err := engine.CurrentUser(context.Background(), login.AccessToken)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if current.Name != "Alice Cooper" {
		t.Fatalf("stale session projection: %q", current.Name)
	}
}

func TestUpdateSettingsTwoFactorToggle(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	engine := newTestEngine(t, rdb, up, nil)
	user := seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice", EmailVerifiedAt: time.Now().Unix()}, "correct-horse")

	login := settingsTestLogin(t, engine, "alice@example.com", "correct-horse")

	updated, err := engine.UpdateSettings(context.Background(), login.AccessToken, UpdateSettingsInput{
		TwoFactorEnabled: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if !updated.TwoFactorEnabled {
		t.Fatal("expected two-factor to be enabled")
	}
	if !up.users[user.UserID].TwoFactorEnabled {
		t.Fatal("provider record not updated")
	}

	current, err := engine.CurrentUser(context.Background(), login.AccessToken)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if !current.TwoFactorEnabled {
		t.Fatal("stale session projection for two-factor flag")
	}
}

func TestUpdateSettingsPasswordChange(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	engine := newTestEngine(t, rdb, up, nil)
	seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice", EmailVerifiedAt: time.Now().Unix()}, "correct-horse")

	login := settingsTestLogin(t, engine, "alice@example.com", "correct-horse")
	ctx := context.Background()

	// Wrong current password.
	_, err := engine.UpdateSettings(ctx, login.AccessToken, UpdateSettingsInput{
		CurrentPassword: strPtr("wrong-horse"),
		NewPassword:     strPtr("NewPass1!"),
	})
	if !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}

	// New password without current.
	_, err = engine.UpdateSettings(ctx, login.AccessToken, UpdateSettingsInput{
		NewPassword: strPtr("NewPass1!"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unpaired password, got %v", err)
	}

	// Weak new password.
	_, err = engine.UpdateSettings(ctx, login.AccessToken, UpdateSettingsInput{
		CurrentPassword: strPtr("correct-horse"),
		NewPassword:     strPtr("ab"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for weak password, got %v", err)
	}

	// Valid change.
	if _, err := engine.UpdateSettings(ctx, login.AccessToken, UpdateSettingsInput{
		CurrentPassword: strPtr("correct-horse"),
		NewPassword:     strPtr("NewPass1!"),
	}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	if _, err := engine.Login(ctx, LoginInput{Email: "alice@example.com", Password: "correct-horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}
	if result, err := engine.Login(ctx, LoginInput{Email: "alice@example.com", Password: "NewPass1!"}); err != nil || result.Status != LoginOK {
		t.Fatalf("expected new password to log in, got %+v, %v", result, err)
	}
}

func TestUpdateSettingsRejectsEmptyName(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := &mockUserProvider{}
	engine := newTestEngine(t, rdb, up, nil)
	seedUser(t, engine, up, UserRecord{Email: "alice@example.com", Name: "Alice", EmailVerifiedAt: time.Now().Unix()}, "correct-horse")

	login := settingsTestLogin(t, engine, "alice@example.com", "correct-horse")

	_, err := engine.UpdateSettings(context.Background(), login.AccessToken, UpdateSettingsInput{
		Name: strPtr("   "),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if up.updateCalls != 0 {
		t.Fatal("no provider update expected")
	}
}
