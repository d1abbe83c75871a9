// Package auth implements gate's authentication orchestration.
//
// The Service is a stateless coordinator over the user store, the session
// store and the credential hasher: it verifies credentials, issues and
// validates sessions, and manages a user's concurrent sessions. It holds no
// persistent state and no cached session data, so revocation is immediately
// visible to every request.
package auth
