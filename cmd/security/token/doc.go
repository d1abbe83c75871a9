// Package token provides opaque session token primitives for gate.
//
// Tokens are random, unguessable strings with no embedded structure;
// they are only usable via a store lookup.
package token
