package internaldefs

import (
	authflows "github.com/OrionVault/authflows"
)

// CounterDef defines a public type used by authflows APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authflows.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authflows APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authflows.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: authflows.MetricRegisterSuccess, Name: "authflows_register_success_total", Help: "Successful registrations."},
	{ID: authflows.MetricRegisterDuplicate, Name: "authflows_register_duplicate_total", Help: "Registration attempts rejected as duplicate."},
	{ID: authflows.MetricRegisterFailure, Name: "authflows_register_failure_total", Help: "Failed registrations."},
	{ID: authflows.MetricLoginSuccess, Name: "authflows_login_success_total", Help: "Successful login attempts."},
	{ID: authflows.MetricLoginFailure, Name: "authflows_login_failure_total", Help: "Failed login attempts."},
	{ID: authflows.MetricLoginVerificationResent, Name: "authflows_login_verification_resent_total", Help: "Logins answered with a re-issued verification mail."},
	{ID: authflows.MetricLoginTwoFactorIssued, Name: "authflows_login_two_factor_issued_total", Help: "Logins answered with a two-factor challenge."},
	{ID: authflows.MetricLoginTwoFactorFailure, Name: "authflows_login_two_factor_failure_total", Help: "Failed two-factor code checks during login."},
	{ID: authflows.MetricVerificationConfirmSuccess, Name: "authflows_verification_confirm_success_total", Help: "Successful email verification confirmations."},
	{ID: authflows.MetricVerificationConfirmFailure, Name: "authflows_verification_confirm_failure_total", Help: "Failed email verification confirmations."},
	{ID: authflows.MetricTwoFactorSetupIssued, Name: "authflows_two_factor_setup_issued_total", Help: "Issued two-factor setup challenges."},
	{ID: authflows.MetricTwoFactorSetupConfirmSuccess, Name: "authflows_two_factor_setup_confirm_success_total", Help: "Successful two-factor setup confirmations."},
	{ID: authflows.MetricTwoFactorSetupConfirmFailure, Name: "authflows_two_factor_setup_confirm_failure_total", Help: "Failed two-factor setup confirmations."},
	{ID: authflows.MetricPasswordResetRequest, Name: "authflows_password_reset_request_total", Help: "Password reset requests."},
	{ID: authflows.MetricPasswordResetConfirmSuccess, Name: "authflows_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: authflows.MetricPasswordResetConfirmFailure, Name: "authflows_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: authflows.MetricSettingsUpdateSuccess, Name: "authflows_settings_update_success_total", Help: "Successful settings updates."},
	{ID: authflows.MetricSettingsUpdateFailure, Name: "authflows_settings_update_failure_total", Help: "Failed settings updates."},
	{ID: authflows.MetricSessionCreated, Name: "authflows_session_created_total", Help: "Created sessions."},
	{ID: authflows.MetricSessionInvalidated, Name: "authflows_session_invalidated_total", Help: "Session invalidation operations."},
	{ID: authflows.MetricLogout, Name: "authflows_logout_total", Help: "Single-session logout operations."},
	{ID: authflows.MetricLogoutAll, Name: "authflows_logout_all_total", Help: "Logout-all operations."},
	{ID: authflows.MetricMailDeliveryFailure, Name: "authflows_mail_delivery_failure_total", Help: "Failed mail deliveries."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: authflows.MetricLoginLatency, Name: "authflows_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
