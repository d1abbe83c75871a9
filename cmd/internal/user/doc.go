// Package user implements account storage for gate.
//
// It owns the "user" table exclusively: creation (with atomic duplicate
// checking), lookup by id/name, and disabling. Password hashes never leave
// this package except through GetByName, which exists solely for the
// credential check in the auth service.
package user
