package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"
	"golang.org/x/time/rate"

	"github.com/allisson/tokenstore/internal/config"
	"github.com/allisson/tokenstore/internal/database"
	apperrors "github.com/allisson/tokenstore/internal/errors"
	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
	tokenService "github.com/allisson/tokenstore/internal/token/service"
	appValidation "github.com/allisson/tokenstore/internal/validation"
)

// expiresField is the payload field carrying the record expiry on input.
// It is lifted into the expiry column and dropped from the stored blob.
const expiresField = "expires"

// keyField is the payload field shadowing the storage key. The key always
// comes from derivation, so an inbound value is discarded.
const keyField = "id"

// tokenStore implements TokenStore on top of a TokenRepository.
type tokenStore struct {
	config     *config.Config
	txManager  database.TxManager
	tokenRepo  TokenRepository
	keyDeriver tokenService.KeyDeriver
	limiter    *rate.Limiter
}

// Create persists a new token record under the derived storage key.
//
// This method:
// 1. Derives the storage key from the token identifier
// 2. Resolves the record expiry from the payload, defaulting from config
// 3. Lifts key and expiry out of the stored payload blob
// 4. Inserts the record with valid=true
//
// An absent expiry gets now + Config.TokenDefaultExpiration; an explicit
// null expiry stores a never-expiring record. All timestamps are UTC.
func (t *tokenStore) Create(
	ctx context.Context,
	tokenID string,
	payload map[string]any,
) (*tokenDomain.Token, error) {
	if err := validateTokenID(tokenID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	expiresAt, err := t.resolveExpiry(payload, now)
	if err != nil {
		return nil, err
	}

	// Key and expiry live in their own columns; drop the payload copies
	stored := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == expiresField || k == keyField {
			continue
		}
		stored[k] = v
	}

	token := &tokenDomain.Token{
		Key:       t.keyDeriver.Derive(tokenID),
		Payload:   stored,
		Valid:     true,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// Fetch retrieves the active record for the token identifier.
//
// The repository lookup already requires valid=true; expiration is evaluated
// here against the current instant, so a record is active strictly while
// now < expires. Absent, revoked and expired records are indistinguishable
// to the caller: all produce ErrTokenNotFound.
func (t *tokenStore) Fetch(ctx context.Context, tokenID string) (*tokenDomain.Token, error) {
	if err := validateTokenID(tokenID); err != nil {
		return nil, err
	}

	token, err := t.tokenRepo.Get(ctx, t.keyDeriver.Derive(tokenID))
	if err != nil {
		return nil, err
	}

	if token.IsExpired() {
		return nil, tokenDomain.ErrTokenNotFound
	}

	return token, nil
}

// Revoke invalidates the record for the token identifier. The repository
// flips valid in one conditional statement, so of two concurrent revokes
// exactly one succeeds; the loser gets ErrTokenNotFound. The record stays
// in storage for revocation-list serving until purged.
func (t *tokenStore) Revoke(ctx context.Context, tokenID string) error {
	if err := validateTokenID(tokenID); err != nil {
		return err
	}

	return t.tokenRepo.Revoke(ctx, t.keyDeriver.Derive(tokenID))
}

// ListByOwner returns the storage keys of active records owned by ownerID.
//
// Candidate rows are the valid, unexpired records; owner and scope matching
// happens on the payload here, since payload content is opaque to storage.
// A record matches when its owner sub-field exists and carries ownerID; a
// non-empty scopeID additionally requires the scope sub-field to exist and
// match.
func (t *tokenStore) ListByOwner(ctx context.Context, ownerID, scopeID string) ([]string, error) {
	if err := validateOwnerID(ownerID); err != nil {
		return nil, err
	}

	tokens, err := t.tokenRepo.ListActive(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0)
	for _, token := range tokens {
		if !matchesOwner(token, ownerID, scopeID) {
			continue
		}
		keys = append(keys, token.Key)
	}

	return keys, nil
}

// ListRevoked returns key and expiry of every revoked record that has not
// yet expired. Expired revoked records drop off the list on their own; the
// purger removes them from storage later.
func (t *tokenStore) ListRevoked(ctx context.Context) ([]*tokenDomain.RevokedToken, error) {
	return t.tokenRepo.ListRevoked(ctx, time.Now().UTC())
}

// PurgeExpired deletes records that expired more than the specified number
// of days ago, regardless of validity. Returns the number of deleted
// records. Use dryRun=true to preview the count without deletion.
//
// With a positive Config.PurgeBatchSize, deletion runs as a sequence of
// bounded batches, each in its own short transaction and paced by the rate
// limiter, so sustained purges do not monopolize the row store.
func (t *tokenStore) PurgeExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be non-negative")
	}

	// Calculate the cutoff timestamp (days ago from now in UTC)
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	if dryRun {
		// In dry run mode, count expired tokens without deleting
		return t.tokenRepo.CountExpired(ctx, cutoff)
	}

	batchSize := t.config.PurgeBatchSize
	if batchSize <= 0 {
		var deleted int64
		err := t.txManager.WithTx(ctx, func(txCtx context.Context) error {
			var txErr error
			deleted, txErr = t.tokenRepo.DeleteExpired(txCtx, cutoff, 0)
			return txErr
		})
		return deleted, err
	}

	var total int64
	for {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return total, err
			}
		}

		var deleted int64
		err := t.txManager.WithTx(ctx, func(txCtx context.Context) error {
			var txErr error
			deleted, txErr = t.tokenRepo.DeleteExpired(txCtx, cutoff, batchSize)
			return txErr
		})
		if err != nil {
			return total, err
		}

		total += deleted
		if deleted < int64(batchSize) {
			return total, nil
		}
	}
}

// resolveExpiry determines the expiry for a new record from the payload.
// Absent means the configured default; an explicit null means the record
// never expires; timestamps are accepted as time.Time or RFC 3339 strings.
func (t *tokenStore) resolveExpiry(payload map[string]any, now time.Time) (*time.Time, error) {
	raw, ok := payload[expiresField]
	if !ok {
		expiresAt := now.Add(t.config.TokenDefaultExpiration)
		return &expiresAt, nil
	}

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case time.Time:
		expiresAt := v.UTC()
		return &expiresAt, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		expiresAt := v.UTC()
		return &expiresAt, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "expires must be an RFC 3339 timestamp")
		}
		expiresAt := parsed.UTC()
		return &expiresAt, nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "expires must be a timestamp")
	}
}

// matchesOwner reports whether the token payload carries the given owner,
// and the given scope when one is requested.
func matchesOwner(token *tokenDomain.Token, ownerID, scopeID string) bool {
	id, ok := token.OwnerID()
	if !ok || id != ownerID {
		return false
	}

	if scopeID != "" {
		sid, ok := token.ScopeID()
		if !ok || sid != scopeID {
			return false
		}
	}

	return true
}

func validateTokenID(tokenID string) error {
	err := validation.Validate(tokenID,
		validation.Required.Error("token id is required"),
		appValidation.NotBlank,
	)
	return appValidation.WrapValidationError(err)
}

func validateOwnerID(ownerID string) error {
	err := validation.Validate(ownerID,
		validation.Required.Error("owner id is required"),
		appValidation.NotBlank,
	)
	return appValidation.WrapValidationError(err)
}

// NewTokenStore creates a TokenStore with the provided dependencies.
// Default expiration and purge tuning come from config; batch pacing is
// disabled when Config.PurgeBatchesPerSec is zero or negative.
func NewTokenStore(
	cfg *config.Config,
	txManager database.TxManager,
	tokenRepo TokenRepository,
	keyDeriver tokenService.KeyDeriver,
) TokenStore {
	var limiter *rate.Limiter
	if cfg.PurgeBatchesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.PurgeBatchesPerSec), 1)
	}

	return &tokenStore{
		config:     cfg,
		txManager:  txManager,
		tokenRepo:  tokenRepo,
		keyDeriver: keyDeriver,
		limiter:    limiter,
	}
}
