// Package hash provides helpers for hashing and verifying secrets.
//
// Typical usage is signing outbound payloads: compute the HMAC of the body,
// then let the receiver verify it with the shared secret. Implementations
// live in this package behind a small interface.
package hash
