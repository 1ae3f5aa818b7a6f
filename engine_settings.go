package authflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OrionVault/authflows/session"
)

// UpdateSettings describes the updatesettings operation and its observable behavior.
//
// UpdateSettings may return an error when input validation, dependency calls, or security checks fail.
// UpdateSettings does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The email address is not part of the input on purpose; changing it
// would bypass the verification flow. The session's cached projection
// is rewritten before returning, and a failed rewrite is an error: a
// stale projection would contradict the account record.
func (e *Engine) UpdateSettings(ctx context.Context, accessToken string, input UpdateSettingsInput) (AuthUser, error) {
	sess, err := e.resolveSession(ctx, accessToken)
	if err != nil {
		return AuthUser{}, err
	}

	user, err := e.userProvider.GetUserByID(ctx, sess.UserID)
	if err != nil {
		e.metricInc(MetricSettingsUpdateFailure)
		e.emitAudit(ctx, auditEventSettingsUpdate, false, sess.UserID, sess.SessionID, ErrUserNotFound, nil)
		return AuthUser{}, ErrUserNotFound
	}

	changes := UserChanges{TwoFactorEnabled: input.TwoFactorEnabled}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if !e.validName(name) {
			e.metricInc(MetricSettingsUpdateFailure)
			e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrInvalidInput, nil)
			return AuthUser{}, ErrInvalidInput
		}
		changes.Name = &name
	}

	if (input.CurrentPassword == nil) != (input.NewPassword == nil) {
		e.metricInc(MetricSettingsUpdateFailure)
		e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrInvalidInput, nil)
		return AuthUser{}, ErrInvalidInput
	}
	if input.CurrentPassword != nil {
		if user.PasswordHash == "" {
			e.metricInc(MetricSettingsUpdateFailure)
			e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrIncorrectPassword, nil)
			return AuthUser{}, ErrIncorrectPassword
		}
		ok, err := e.passwordHash.Verify(*input.CurrentPassword, user.PasswordHash)
		if err != nil || !ok {
			e.metricInc(MetricSettingsUpdateFailure)
			e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrIncorrectPassword, nil)
			return AuthUser{}, ErrIncorrectPassword
		}
		if !e.validPassword(*input.NewPassword) {
			e.metricInc(MetricSettingsUpdateFailure)
			e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrInvalidInput, nil)
			return AuthUser{}, ErrInvalidInput
		}
		hash, err := e.passwordHash.Hash(*input.NewPassword)
		if err != nil {
			e.metricInc(MetricSettingsUpdateFailure)
			return AuthUser{}, err
		}
		changes.PasswordHash = &hash
	}

	updated, err := e.userProvider.UpdateUser(ctx, user.UserID, changes)
	if err != nil {
		e.metricInc(MetricSettingsUpdateFailure)
		e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrProviderUnavailable, nil)
		return AuthUser{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	sess.Name = updated.Name
	sess.TwoFactorEnabled = updated.TwoFactorEnabled
	sess.EmailVerifiedAt = updated.EmailVerifiedAt

	if err := e.sessions.Update(ctx, sess); err != nil {
		e.metricInc(MetricSettingsUpdateFailure)
		if errors.Is(err, session.ErrSessionNotFound) {
			// The session expired while we were updating the account.
			e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrNoActiveSession, nil)
			return AuthUser{}, ErrNoActiveSession
		}
		e.emitAudit(ctx, auditEventSettingsUpdate, false, user.UserID, sess.SessionID, ErrSessionStoreUnavailable, nil)
		return AuthUser{}, fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	e.metricInc(MetricSettingsUpdateSuccess)
	e.emitAudit(ctx, auditEventSettingsUpdate, true, updated.UserID, sess.SessionID, nil, nil)

	return AuthUser{
		UserID:           updated.UserID,
		Email:            updated.Email,
		Name:             updated.Name,
		EmailVerified:    updated.EmailVerified(),
		TwoFactorEnabled: updated.TwoFactorEnabled,
		SessionID:        sess.SessionID,
	}, nil
}
