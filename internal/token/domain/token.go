// Package domain contains the core entities for stored authentication tokens.
package domain

import (
	"time"
)

// Token is the persisted record for an opaque authentication token.
// The record is keyed by a derived storage key, never by the raw identifier
// presented by callers (legacy identifiers are hashed into compact keys).
type Token struct {
	Key string
	// Payload stores the caller-supplied token content as JSON in the
	// database. The store does not interpret it beyond the owner and scope
	// sub-fields read by listings. Supported types: string, int, float64,
	// bool, nil, and nested maps/slices of these types.
	Payload   map[string]any
	Valid     bool
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// RevokedToken is the lightweight listing entry used to build revocation
// lists. It intentionally carries no payload.
type RevokedToken struct {
	Key       string
	ExpiresAt time.Time
}

// IsExpired checks if the token has expired. All time comparisons use UTC.
// A token without an expiry never expires; a token expires exactly at its
// expiry instant.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return !time.Now().UTC().Before(t.ExpiresAt.UTC())
}

// IsActive checks if the token is usable: not revoked and not expired.
func (t *Token) IsActive() bool {
	return t.Valid && !t.IsExpired()
}

// OwnerID returns the owner identity recorded in the payload. The second
// return reports whether the payload carries an owner sub-field at all.
func (t *Token) OwnerID() (string, bool) {
	return subFieldID(t.Payload, "owner")
}

// ScopeID returns the scope identity recorded in the payload. The second
// return reports whether the payload carries a scope sub-field at all.
func (t *Token) ScopeID() (string, bool) {
	return subFieldID(t.Payload, "scope")
}

// subFieldID reads payload[field]["id"] as a string. A sub-field that is not
// a mapping counts as absent; a missing or non-string id yields "".
func subFieldID(payload map[string]any, field string) (string, bool) {
	sub, ok := payload[field].(map[string]any)
	if !ok {
		return "", false
	}
	id, _ := sub["id"].(string)
	return id, true
}
