package authflows

import (
	"net/mail"
	"strings"
	"time"

	"github.com/OrionVault/authflows/internal/stores"
	"github.com/OrionVault/authflows/jwt"
	"github.com/OrionVault/authflows/password"
	"github.com/OrionVault/authflows/session"
)

// Engine is the authentication core. It owns the token and session
// stores and orchestrates every account flow; user persistence and mail
// delivery stay behind the [UserProvider] and [Mailer] collaborators.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	userProvider UserProvider
	mailer       Mailer
	tokens       *stores.TokenStore
	sessions     *session.Store
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	e.metrics.Observe(id, d)
}

/*
====================================
INPUT VALIDATION
====================================
*/

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (e *Engine) validEmail(email string) bool {
	if email == "" || len(email) > e.config.Account.MaxEmailLength {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms; the provider stores bare addresses.
	return addr.Address == email
}

func (e *Engine) validName(name string) bool {
	return name != "" && len(name) <= e.config.Account.MaxNameLength
}

func (e *Engine) validPassword(plaintext string) bool {
	return len(plaintext) >= e.config.Password.MinLength
}
