// Package auth implements the authentication and account lifecycle core of
// the user API: bcrypt credential hashing, stateless JWT session tokens,
// single-use password reset secrets, and the session validity policy that
// revokes tokens issued before a password change.
//
// Session revocation:
//   - There is no server side session table. Every session token carries its
//     issue time, and users carry a PasswordChangedAt watermark. Tokens issued
//     before the watermark fail the validity policy, so password changes and
//     resets implicitly invalidate every prior session.
//
// Lifecycle commands:
//   - Signup, password reset (initialize/finalize), password update, profile
//     update, deactivation, and deletion are Message/Handler pairs. Handlers
//     run their persistence inside a transaction and surface rich errors with
//     categories that map directly onto HTTP status codes.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     lifecycle handlers to describe login, password, and account events.
//     Sinks run best-effort (errors are logged) so you can forward to a
//     database or queue without blocking authentication.
package auth
