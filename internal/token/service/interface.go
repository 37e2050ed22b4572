// Package service provides the key derivation strategy for token storage.
//
// Externally supplied token identifiers are not always suitable as storage
// keys: identifiers in the legacy signed-token encoding are large opaque
// blobs, far beyond the 64-byte key column. The key deriver compacts those
// into fixed-length digests while passing every other identifier through
// unchanged.
package service

// LegacyDetector reports whether a token identifier uses the legacy
// signed-token encoding. It must be a pure predicate.
type LegacyDetector func(tokenID string) bool

// KeyDeriver maps an externally supplied token identifier to the storage key
// that indexes its record.
type KeyDeriver interface {
	// Derive returns the storage key for the given token identifier.
	// Pure and deterministic; any string is a legal input.
	Derive(tokenID string) string
}
