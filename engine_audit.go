package authflows

import (
	"context"
	"errors"
	"time"
)

// Audit event types emitted by the engine. Names are stable identifiers
// consumed by downstream sinks; changing one is a breaking change for
// log pipelines.
const (
	auditEventRegister                 = "register"
	auditEventLogin                    = "login"
	auditEventLoginVerificationResent  = "login_verification_resent"
	auditEventLoginTwoFactorIssued     = "login_two_factor_issued"
	auditEventEmailVerificationConfirm = "email_verification_confirm"
	auditEventTwoFactorSetupRequest    = "two_factor_setup_request"
	auditEventTwoFactorSetupConfirm    = "two_factor_setup_confirm"
	auditEventPasswordResetRequest     = "password_reset_request"
	auditEventPasswordResetConfirm     = "password_reset_confirm"
	auditEventSettingsUpdate           = "settings_update"
	auditEventLogout                   = "logout"
	auditEventLogoutAll                = "logout_all"
	auditEventMailDeliveryFailure      = "mail_delivery_failure"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	opErr error,
	metadata map[string]string,
) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = auditErrorCode(opErr)
	}

	e.audit.Emit(ctx, event)
}

// auditErrorCode maps engine errors to stable codes. Raw error strings
// never reach the sink.
func auditErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrEmailExists):
		return "email_exists"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrTokenMissing):
		return "token_missing"
	case errors.Is(err, ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTwoFactorCodeNotFound):
		return "two_factor_code_not_found"
	case errors.Is(err, ErrTwoFactorCodeMismatch):
		return "two_factor_code_mismatch"
	case errors.Is(err, ErrTwoFactorCodeExpired):
		return "two_factor_code_expired"
	case errors.Is(err, ErrIncorrectPassword):
		return "incorrect_password"
	case errors.Is(err, ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrMailDeliveryFailed):
		return "mail_delivery_failed"
	case errors.Is(err, ErrTokenStoreUnavailable):
		return "token_store_unavailable"
	case errors.Is(err, ErrSessionStoreUnavailable):
		return "session_store_unavailable"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	default:
		return "internal_error"
	}
}
