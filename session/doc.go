// Package session stores server-side session records in Redis.
//
// A session carries a compact projection of the account it belongs to
// (email, display name, verification and two-factor state) so request
// handling does not need a user lookup. Records are binary encoded and
// indexed per user for bulk invalidation.
package session
