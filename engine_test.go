package authflows

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/OrionVault/authflows/internal/stores"
	"github.com/OrionVault/authflows/jwt"
	"github.com/OrionVault/authflows/password"
	"github.com/OrionVault/authflows/session"
)

type mockUserProvider struct {
	users   map[string]UserRecord
	byEmail map[string]string
	mu      sync.Mutex

	createErr         error
	updatePasswordErr error
	updateErr         error
	markVerifiedErr   error

	getByEmailCalls     int
	getByIDCalls        int
	createCalls         int
	updatePasswordCalls int
	markVerifiedCalls   int
	markTwoFactorCalls  int
	updateCalls         int
}

func (m *mockUserProvider) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByEmailCalls++

	userID, ok := m.byEmail[email]
	if !ok {
		return UserRecord{}, errors.New("not found")
	}

	user, ok := m.users[userID]
	if !ok {
		return UserRecord{}, errors.New("not found")
	}

	return user, nil
}

func (m *mockUserProvider) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByIDCalls++

	user, ok := m.users[userID]
	if !ok {
		return UserRecord{}, errors.New("not found")
	}

	return user, nil
}

func (m *mockUserProvider) CreateUser(_ context.Context, input CreateUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	if m.createErr != nil {
		return UserRecord{}, m.createErr
	}

	if m.users == nil {
		m.users = make(map[string]UserRecord)
	}
	if m.byEmail == nil {
		m.byEmail = make(map[string]string)
	}

	userID := fmt.Sprintf("u%d", len(m.users)+1)
	user := UserRecord{
		UserID:       userID,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
	}

	m.users[userID] = user
	m.byEmail[input.Email] = userID

	return user, nil
}

func (m *mockUserProvider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePasswordCalls++

	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}

	user, ok := m.users[userID]
	if !ok {
		return errors.New("not found")
	}

	user.PasswordHash = newHash
	m.users[userID] = user
	return nil
}

func (m *mockUserProvider) MarkEmailVerified(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markVerifiedCalls++

	if m.markVerifiedErr != nil {
		return m.markVerifiedErr
	}

	user, ok := m.users[userID]
	if !ok {
		return errors.New("not found")
	}

	user.EmailVerifiedAt = at.Unix()
	m.users[userID] = user
	return nil
}

func (m *mockUserProvider) MarkTwoFactorVerified(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markTwoFactorCalls++

	user, ok := m.users[userID]
	if !ok {
		return errors.New("not found")
	}

	user.TwoFactorVerifiedAt = at.Unix()
	m.users[userID] = user
	return nil
}

func (m *mockUserProvider) UpdateUser(_ context.Context, userID string, changes UserChanges) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	if m.updateErr != nil {
		return UserRecord{}, m.updateErr
	}

	user, ok := m.users[userID]
	if !ok {
		return UserRecord{}, errors.New("not found")
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.TwoFactorEnabled != nil {
		user.TwoFactorEnabled = *changes.TwoFactorEnabled
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}

	m.users[userID] = user
	return user, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failAll bool
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return errors.New("smtp down")
	}

	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("expected at least one mail to be sent")
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestHasher(t *testing.T) *password.Argon2 {
	t.Helper()

	h, err := password.NewArgon2(password.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func newTestJWTManager(t *testing.T) *jwt.Manager {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey failed: %v", err)
	}

	manager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("jwt.NewManager failed: %v", err)
	}
	return manager
}

func testEngineConfig() Config {
	cfg := defaultConfig()
	cfg.Password.MinLength = 6
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, up UserProvider, mailer Mailer) *Engine {
	t.Helper()

	cfg := testEngineConfig()
	if mailer == nil {
		mailer = NoOpMailer{}
	}

	return &Engine{
		config:       cfg,
		userProvider: up,
		mailer:       mailer,
		tokens:       stores.NewTokenStore(rdb, cfg.TokenStore.RedisPrefix),
		sessions:     session.NewStore(rdb, cfg.Session.RedisPrefix),
		passwordHash: newTestHasher(t),
		jwtManager:   newTestJWTManager(t),
		metrics:      NewMetrics(cfg.Metrics),
	}
}

// seedUser hashes the password and installs the account in the mock
// provider under the next sequential ID.
func seedUser(t *testing.T, e *Engine, up *mockUserProvider, user UserRecord, plaintext string) UserRecord {
	t.Helper()

	if plaintext != "" {
		hash, err := e.passwordHash.Hash(plaintext)
		if err != nil {
			t.Fatalf("seed hash failed: %v", err)
		}
		user.PasswordHash = hash
	}

	if up.users == nil {
		up.users = make(map[string]UserRecord)
	}
	if up.byEmail == nil {
		up.byEmail = make(map[string]string)
	}
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("u%d", len(up.users)+1)
	}

	up.users[user.UserID] = user
	up.byEmail[user.Email] = user.UserID
	return user
}

// issueTestToken writes a token record directly through the store,
// bypassing the engine, so tests can control the expiry timestamp.
func issueTestToken(t *testing.T, e *Engine, kind stores.TokenKind, email, value string, expiresAt int64) {
	t.Helper()

	record := &stores.TokenRecord{
		ID:        "tok-" + value,
		Email:     email,
		Value:     value,
		ExpiresAt: expiresAt,
	}
	if err := e.tokens.Create(context.Background(), kind, record, time.Hour, time.Hour); err != nil {
		t.Fatalf("issueTestToken failed: %v", err)
	}
}
