// Package authapi exposes the authentication HTTP surface: login, logout,
// session validation and session management, plus account creation and
// lookup. Session tokens travel only in an HttpOnly cookie; response
// bodies never carry them.
package authapi
