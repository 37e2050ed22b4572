// Package usecase defines the business logic interfaces for token lifecycle
// operations.
package usecase

import (
	"context"
	"time"

	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
)

// TokenRepository defines persistence operations for token records.
// Implementations must support transaction-aware operations via context
// propagation and translate driver failures into the domain sentinel errors.
type TokenRepository interface {
	// Create stores a new token record. Returns ErrTokenAlreadyExists when
	// the storage key is already present.
	Create(ctx context.Context, token *tokenDomain.Token) error

	// Get retrieves a non-revoked record by storage key. Returns
	// ErrTokenNotFound for absent and revoked records alike; expiration is
	// not evaluated here.
	Get(ctx context.Context, key string) (*tokenDomain.Token, error)

	// Revoke atomically flips a still-valid record to invalid. Returns
	// ErrTokenNotFound when no valid record matched.
	Revoke(ctx context.Context, key string) error

	// ListActive retrieves every valid record expiring after the given
	// instant.
	ListActive(ctx context.Context, expiresAfter time.Time) ([]*tokenDomain.Token, error)

	// ListRevoked retrieves key and expiry of every revoked record expiring
	// after the given instant.
	ListRevoked(ctx context.Context, expiresAfter time.Time) ([]*tokenDomain.RevokedToken, error)

	// DeleteExpired removes records that expired before the given timestamp,
	// regardless of validity. A positive limit caps the rows removed per
	// call. Returns the number of deleted records.
	DeleteExpired(ctx context.Context, olderThan time.Time, limit int) (int64, error)

	// CountExpired counts records that expired before the given timestamp
	// without deleting them.
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// TokenStore defines the token lifecycle operations offered to callers.
// Token identifiers are externally issued; the store derives storage keys
// from them and never inspects payload content beyond the owner and scope
// sub-fields.
type TokenStore interface {
	// Create persists a new token record under the key derived from tokenID.
	// When the payload carries no expiry, the configured default expiration
	// is applied. Returns the stored record, with key and expiry visible on
	// it, or ErrTokenAlreadyExists on a storage key collision.
	Create(ctx context.Context, tokenID string, payload map[string]any) (*tokenDomain.Token, error)

	// Fetch retrieves the active record for tokenID. Records that never
	// existed, were revoked, or have expired all produce ErrTokenNotFound;
	// callers must not infer which. No side effects.
	Fetch(ctx context.Context, tokenID string) (*tokenDomain.Token, error)

	// Revoke invalidates the record for tokenID. Of two concurrent revokes
	// exactly one succeeds; the loser and any miss get ErrTokenNotFound.
	Revoke(ctx context.Context, tokenID string) error

	// ListByOwner returns the storage keys of active records whose payload
	// owner matches ownerID. A non-empty scopeID additionally requires the
	// payload scope to exist and match. Keys come back in scan order from a
	// fresh snapshot per call.
	ListByOwner(ctx context.Context, ownerID, scopeID string) ([]string, error)

	// ListRevoked returns key and expiry of revoked records that have not
	// yet expired, for revocation-list construction.
	ListRevoked(ctx context.Context) ([]*tokenDomain.RevokedToken, error)

	// PurgeExpired deletes records that expired more than the given number
	// of days ago. Returns the number of deleted records. Use dryRun=true to
	// preview the count without deleting. Idempotent and safe under
	// concurrent reads.
	PurgeExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}
