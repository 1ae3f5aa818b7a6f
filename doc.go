// Package authflows provides an embeddable account-lifecycle core:
// credential login with an emailed one-time-code second factor, email
// verification, password reset, and settings management, all mediated
// by single-use Redis-backed tokens.
//
// The package is designed for concurrent server workloads: Engine
// methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authflows is the public surface. It exposes [Engine], [Builder],
// [Config], the [UserProvider] and [Mailer] collaborator interfaces,
// and result types. All internal coordination — token storage, session
// encoding, audit dispatch — lives under internal/ and the session/
// sub-package.
//
// # What this package must NOT do
//
//   - Own user persistence. Accounts live behind [UserProvider];
//     authflows only reads records and requests mutations.
//   - Deliver mail. Message composition happens here, transport is the
//     caller's [Mailer].
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
package authflows
