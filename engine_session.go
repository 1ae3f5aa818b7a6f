package authflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OrionVault/authflows/internal"
	"github.com/OrionVault/authflows/session"
)

// establishSession creates the server-side session for a fully gated
// login and signs the access token referencing it.
func (e *Engine) establishSession(ctx context.Context, user UserRecord) (*session.Session, string, error) {
	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	sess := &session.Session{
		SessionID:        sid.String(),
		UserID:           user.UserID,
		Email:            user.Email,
		Name:             user.Name,
		TwoFactorEnabled: user.TwoFactorEnabled,
		EmailVerifiedAt:  user.EmailVerifiedAt,
		CreatedAt:        now.Unix(),
		ExpiresAt:        now.Add(e.config.Session.Lifetime).Unix(),
	}

	if err := e.sessions.Save(ctx, sess, e.config.Session.Lifetime); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	access, err := e.jwtManager.CreateAccess(user.UserID, sess.SessionID, user.Email)
	if err != nil {
		_, _ = e.sessions.Delete(ctx, user.UserID, sess.SessionID)
		return nil, "", err
	}

	e.metricInc(MetricSessionCreated)
	return sess, access, nil
}

// resolveSession maps an access token to its live session. Any parse
// failure, unknown session, or user mismatch collapses to
// [ErrNoActiveSession]; only store outages surface separately.
func (e *Engine) resolveSession(ctx context.Context, accessToken string) (*session.Session, error) {
	if accessToken == "" {
		return nil, ErrNoActiveSession
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrNoActiveSession
	}

	sess, err := e.sessions.Get(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionCorrupt) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	if sess.UserID != claims.UID {
		return nil, ErrNoActiveSession
	}

	return sess, nil
}

// CurrentUser describes the currentuser operation and its observable behavior.
//
// CurrentUser may return an error when input validation, dependency calls, or security checks fail.
// CurrentUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CurrentUser(ctx context.Context, accessToken string) (AuthUser, error) {
	sess, err := e.resolveSession(ctx, accessToken)
	if err != nil {
		return AuthUser{}, err
	}

	return AuthUser{
		UserID:           sess.UserID,
		Email:            sess.Email,
		Name:             sess.Name,
		EmailVerified:    sess.EmailVerifiedAt > 0,
		TwoFactorEnabled: sess.TwoFactorEnabled,
		SessionID:        sess.SessionID,
	}, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	sess, err := e.resolveSession(ctx, accessToken)
	if err != nil {
		return err
	}

	removed, err := e.sessions.Delete(ctx, sess.UserID, sess.SessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	if removed {
		e.metricInc(MetricSessionInvalidated)
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, sess.UserID, sess.SessionID, nil, nil)

	return nil
}

// LogoutAll describes the logoutall operation and its observable behavior.
//
// LogoutAll may return an error when input validation, dependency calls, or security checks fail.
// LogoutAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LogoutAll(ctx context.Context, accessToken string) (int, error) {
	sess, err := e.resolveSession(ctx, accessToken)
	if err != nil {
		return 0, err
	}

	removed, err := e.sessions.DeleteAllForUser(ctx, sess.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	if removed > 0 {
		e.metricInc(MetricSessionInvalidated)
	}
	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, sess.UserID, sess.SessionID, nil,
		map[string]string{"sessions_removed": fmt.Sprint(removed)})

	return removed, nil
}
