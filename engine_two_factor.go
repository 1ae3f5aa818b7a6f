package authflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OrionVault/authflows/internal/stores"
)

// RequestTwoFactorSetup describes the requesttwofactorsetup operation and its observable behavior.
//
// RequestTwoFactorSetup may return an error when input validation, dependency calls, or security checks fail.
// RequestTwoFactorSetup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Setup requires a verified email: the one-time code travels over the
// same address, so an unverified account has nothing trustworthy to
// deliver it to.
func (e *Engine) RequestTwoFactorSetup(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !e.validEmail(email) {
		return ErrInvalidInput
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventTwoFactorSetupRequest, false, "", "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}
	if !user.EmailVerified() {
		e.emitAudit(ctx, auditEventTwoFactorSetupRequest, false, user.UserID, "", ErrInvalidInput, nil)
		return ErrInvalidInput
	}

	record, err := e.issueToken(ctx, stores.KindTwoFactor, email)
	if err != nil {
		e.emitAudit(ctx, auditEventTwoFactorSetupRequest, false, user.UserID, "", err, nil)
		return err
	}

	if err := e.sendTwoFactorMail(ctx, email, record.Value); err != nil {
		e.emitAudit(ctx, auditEventTwoFactorSetupRequest, false, user.UserID, "", err, nil)
		return err
	}

	e.metricInc(MetricTwoFactorSetupIssued)
	e.emitAudit(ctx, auditEventTwoFactorSetupRequest, true, user.UserID, "", nil, nil)

	return nil
}

// ConfirmTwoFactorSetup describes the confirmtwofactorsetup operation and its observable behavior.
//
// ConfirmTwoFactorSetup may return an error when input validation, dependency calls, or security checks fail.
// ConfirmTwoFactorSetup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmTwoFactorSetup(ctx context.Context, tokenValue string) error {
	if tokenValue == "" {
		return ErrTokenMissing
	}

	record, err := e.lookupToken(ctx, stores.KindTwoFactor, tokenValue)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			e.pruneToken(ctx, stores.KindTwoFactor, record.Value)
		}
		e.metricInc(MetricTwoFactorSetupConfirmFailure)
		e.emitAudit(ctx, auditEventTwoFactorSetupConfirm, false, "", "", err, nil)
		return err
	}

	user, err := e.userProvider.GetUserByEmail(ctx, record.Email)
	if err != nil {
		e.metricInc(MetricTwoFactorSetupConfirmFailure)
		e.emitAudit(ctx, auditEventTwoFactorSetupConfirm, false, "", "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	if err := e.userProvider.MarkTwoFactorVerified(ctx, user.UserID, time.Now()); err != nil {
		e.metricInc(MetricTwoFactorSetupConfirmFailure)
		e.emitAudit(ctx, auditEventTwoFactorSetupConfirm, false, user.UserID, "", ErrProviderUnavailable, nil)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	e.pruneToken(ctx, stores.KindTwoFactor, record.Value)

	e.metricInc(MetricTwoFactorSetupConfirmSuccess)
	e.emitAudit(ctx, auditEventTwoFactorSetupConfirm, true, user.UserID, "", nil, nil)

	return nil
}
