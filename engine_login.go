package authflows

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/OrionVault/authflows/internal/stores"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The gates run in a fixed order: input shape, account lookup, email
// verification, two-factor challenge, password, session. An account
// that has not confirmed its address never reaches the password check;
// it gets a fresh verification mail and [LoginVerificationResent].
func (e *Engine) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	start := time.Now()

	email := normalizeEmail(input.Email)
	if !e.validEmail(email) || input.Password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, "", "", ErrInvalidInput, nil)
		return LoginResult{}, ErrInvalidInput
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, "", "", ErrUserNotFound, nil)
		return LoginResult{}, ErrUserNotFound
	}

	if !user.EmailVerified() {
		result := LoginResult{Status: LoginVerificationResent}

		record, err := e.issueToken(ctx, stores.KindVerification, email)
		if err != nil {
			result.NotificationFailed = true
		} else if err := e.sendVerificationMail(ctx, email, record.Value); err != nil {
			result.NotificationFailed = true
		}

		e.metricInc(MetricLoginVerificationResent)
		e.emitAudit(ctx, auditEventLoginVerificationResent, true, user.UserID, "", nil, nil)
		return result, nil
	}

	if user.TwoFactorEnabled {
		if input.TwoFactorCode == "" {
			record, err := e.issueToken(ctx, stores.KindTwoFactor, email)
			if err != nil {
				e.metricInc(MetricLoginFailure)
				e.emitAudit(ctx, auditEventLogin, false, user.UserID, "", err, nil)
				return LoginResult{}, err
			}
			// Without the code in hand the login can never complete, so
			// a failed delivery is fatal here.
			if err := e.sendTwoFactorMail(ctx, email, record.Value); err != nil {
				e.metricInc(MetricLoginFailure)
				e.emitAudit(ctx, auditEventLogin, false, user.UserID, "", err, nil)
				return LoginResult{}, err
			}

			e.metricInc(MetricLoginTwoFactorIssued)
			e.emitAudit(ctx, auditEventLoginTwoFactorIssued, true, user.UserID, "", nil, nil)
			return LoginResult{Status: LoginTwoFactorRequired}, nil
		}

		if err := e.checkTwoFactorCode(ctx, email, input.TwoFactorCode); err != nil {
			e.metricInc(MetricLoginTwoFactorFailure)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, false, user.UserID, "", err, nil)
			return LoginResult{}, err
		}
	}

	if err := e.verifyPassword(ctx, &user, input.Password); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, user.UserID, "", err, nil)
		return LoginResult{}, err
	}

	sess, access, err := e.establishSession(ctx, user)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, user.UserID, "", err, nil)
		return LoginResult{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricObserve(MetricLoginLatency, time.Since(start))
	e.emitAudit(ctx, auditEventLogin, true, user.UserID, sess.SessionID, nil, nil)

	return LoginResult{
		Status:      LoginOK,
		AccessToken: access,
		SessionID:   sess.SessionID,
	}, nil
}

// checkTwoFactorCode validates the submitted code against the active
// two-factor token and consumes it on a match. A mismatch leaves the
// token active so the user can retype the code.
func (e *Engine) checkTwoFactorCode(ctx context.Context, email, code string) error {
	record, err := e.tokens.GetActiveByEmail(ctx, stores.KindTwoFactor, email)
	if err != nil {
		if errors.Is(err, stores.ErrTokenNotFound) {
			return ErrTwoFactorCodeNotFound
		}
		return fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}

	if subtle.ConstantTimeCompare([]byte(record.Value), []byte(code)) != 1 {
		return ErrTwoFactorCodeMismatch
	}

	if time.Now().Unix() > record.ExpiresAt {
		e.pruneToken(ctx, stores.KindTwoFactor, record.Value)
		return ErrTwoFactorCodeExpired
	}

	if _, err := e.consumeToken(ctx, stores.KindTwoFactor, record.Value); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			// Lost the claim race to a concurrent login attempt.
			return ErrTwoFactorCodeNotFound
		}
		return err
	}

	return nil
}

// verifyPassword checks the credential and opportunistically rehashes
// it when the stored parameters fall behind the configured ones. A
// failed rehash never fails the login.
func (e *Engine) verifyPassword(ctx context.Context, user *UserRecord, plaintext string) error {
	if user.PasswordHash == "" {
		// Federated account with no local credential.
		return ErrInvalidCredentials
	}

	ok, err := e.passwordHash.Verify(plaintext, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if e.config.Password.UpgradeOnLogin {
		if upgrade, err := e.passwordHash.NeedsUpgrade(user.PasswordHash); err == nil && upgrade {
			if newHash, err := e.passwordHash.Hash(plaintext); err == nil {
				if err := e.userProvider.UpdatePasswordHash(ctx, user.UserID, newHash); err != nil {
					log.Printf("authflows: password rehash for user %s failed: %v", user.UserID, err)
				} else {
					user.PasswordHash = newHash
				}
			}
		}
	}

	return nil
}
