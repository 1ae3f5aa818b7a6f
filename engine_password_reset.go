package authflows

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/OrionVault/authflows/internal/stores"
)

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A failed mail delivery does not fail the request; the caller sees the
// same success and may simply request again.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !e.validEmail(email) {
		return ErrInvalidInput
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	record, err := e.issueToken(ctx, stores.KindPasswordReset, email)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, user.UserID, "", err, nil)
		return err
	}

	_ = e.sendResetMail(ctx, email, record.Value)

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.UserID, "", nil, nil)

	return nil
}

// ConfirmPasswordReset describes the confirmpasswordreset operation and its observable behavior.
//
// ConfirmPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// ConfirmPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// On success every session of the account is destroyed; a credential
// change invalidates whatever the old credential had established.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, tokenValue, newPassword string) error {
	if tokenValue == "" {
		return ErrTokenMissing
	}
	if !e.validPassword(newPassword) {
		return ErrInvalidInput
	}

	record, err := e.lookupToken(ctx, stores.KindPasswordReset, tokenValue)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			e.pruneToken(ctx, stores.KindPasswordReset, record.Value)
		}
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", "", err, nil)
		return err
	}

	user, err := e.userProvider.GetUserByEmail(ctx, record.Email)
	if err != nil {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricPasswordResetConfirmFailure)
		return err
	}

	if err := e.userProvider.UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.UserID, "", ErrProviderUnavailable, nil)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	removed, err := e.tokens.Delete(ctx, stores.KindPasswordReset, record.Value)
	if err != nil {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.UserID, "", ErrTokenStoreUnavailable, nil)
		return fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	if !removed {
		// A concurrent confirm claimed the token first.
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.UserID, "", ErrTokenNotFound, nil)
		return ErrTokenNotFound
	}

	if n, err := e.sessions.DeleteAllForUser(ctx, user.UserID); err != nil {
		log.Printf("authflows: session invalidation after password reset for user %s failed: %v", user.UserID, err)
	} else if n > 0 {
		e.metricInc(MetricSessionInvalidated)
	}

	e.metricInc(MetricPasswordResetConfirmSuccess)
	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, user.UserID, "", nil, nil)

	return nil
}
