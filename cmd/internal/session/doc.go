// Package session implements session storage for gate.
//
// A session binds an opaque token to a user with a bounded lifetime and an
// explicit, one-way revocation state. The package owns the "user_session"
// table exclusively: token issuance happens inside Create, which is the only
// point where the plaintext token exists server-side outside the row itself.
package session
