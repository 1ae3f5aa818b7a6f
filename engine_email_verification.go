package authflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OrionVault/authflows/internal/stores"
)

// ConfirmEmailVerification describes the confirmemailverification operation and its observable behavior.
//
// ConfirmEmailVerification may return an error when input validation, dependency calls, or security checks fail.
// ConfirmEmailVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, tokenValue string) error {
	if tokenValue == "" {
		return ErrTokenMissing
	}

	record, err := e.lookupToken(ctx, stores.KindVerification, tokenValue)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			e.pruneToken(ctx, stores.KindVerification, record.Value)
		}
		e.metricInc(MetricVerificationConfirmFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, "", "", err, nil)
		return err
	}

	user, err := e.userProvider.GetUserByEmail(ctx, record.Email)
	if err != nil {
		e.metricInc(MetricVerificationConfirmFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, "", "", ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	if err := e.userProvider.MarkEmailVerified(ctx, user.UserID, time.Now()); err != nil {
		e.metricInc(MetricVerificationConfirmFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, user.UserID, "", ErrProviderUnavailable, nil)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// The verified flag is authoritative; a token another caller already
	// removed does not undo it.
	e.pruneToken(ctx, stores.KindVerification, record.Value)

	e.metricInc(MetricVerificationConfirmSuccess)
	e.emitAudit(ctx, auditEventEmailVerificationConfirm, true, user.UserID, "", nil, nil)

	return nil
}
