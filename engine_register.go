package authflows

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/OrionVault/authflows/internal/stores"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A created account whose verification mail could not be delivered is
// still a success; the caller sees NotificationFailed and the next
// login attempt re-issues the verification token.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	if !e.validEmail(email) || !e.validName(name) || !e.validPassword(input.Password) {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegister, false, "", "", ErrInvalidInput, nil)
		return RegisterResult{}, ErrInvalidInput
	}

	if _, err := e.userProvider.GetUserByEmail(ctx, email); err == nil {
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegister, false, "", "", ErrEmailExists, nil)
		return RegisterResult{}, ErrEmailExists
	}

	hash, err := e.passwordHash.Hash(input.Password)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		return RegisterResult{}, err
	}

	user, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegister, false, "", "", ErrProviderUnavailable, nil)
		return RegisterResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	result := RegisterResult{UserID: user.UserID}

	record, err := e.issueToken(ctx, stores.KindVerification, email)
	if err != nil {
		result.NotificationFailed = true
	} else if err := e.sendVerificationMail(ctx, email, record.Value); err != nil {
		result.NotificationFailed = true
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, true, user.UserID, "", nil,
		map[string]string{"notification_failed": strconv.FormatBool(result.NotificationFailed)})

	return result, nil
}
