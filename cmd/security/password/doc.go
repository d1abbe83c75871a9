// Package password implements credential hashing for gate.
//
// Passwords are hashed with Argon2id and stored as PHC-style encoded
// strings. The package covers:
// - Configurable Argon2id cost parameters (env-overridable)
// - Password length policy
// - Strict hash decoding and verification with anti-DoS bounds
//
// Security notes:
// - Encoded hashes are treated as untrusted input during Verify.
// - Verification refuses hashes whose parameters exceed reasonable bounds.
package password
