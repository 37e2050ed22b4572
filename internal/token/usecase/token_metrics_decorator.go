package usecase

import (
	"context"
	"time"

	"github.com/allisson/tokenstore/internal/metrics"
	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
)

// tokenStoreWithMetrics decorates TokenStore with metrics instrumentation.
type tokenStoreWithMetrics struct {
	next    TokenStore
	metrics metrics.BusinessMetrics
}

// NewTokenStoreWithMetrics wraps a TokenStore with metrics recording.
func NewTokenStoreWithMetrics(store TokenStore, m metrics.BusinessMetrics) TokenStore {
	return &tokenStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

// Create records metrics for token persistence operations.
func (t *tokenStoreWithMetrics) Create(
	ctx context.Context,
	tokenID string,
	payload map[string]any,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Create(ctx, tokenID, payload)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "create", status)
	t.metrics.RecordDuration(ctx, "token", "create", time.Since(start), status)

	return token, err
}

// Fetch records metrics for token lookup operations.
func (t *tokenStoreWithMetrics) Fetch(ctx context.Context, tokenID string) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Fetch(ctx, tokenID)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "fetch", status)
	t.metrics.RecordDuration(ctx, "token", "fetch", time.Since(start), status)

	return token, err
}

// Revoke records metrics for token revocation operations.
func (t *tokenStoreWithMetrics) Revoke(ctx context.Context, tokenID string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, tokenID)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "revoke", status)
	t.metrics.RecordDuration(ctx, "token", "revoke", time.Since(start), status)

	return err
}

// ListByOwner records metrics for owner enumeration operations.
func (t *tokenStoreWithMetrics) ListByOwner(
	ctx context.Context,
	ownerID string,
	scopeID string,
) ([]string, error) {
	start := time.Now()
	keys, err := t.next.ListByOwner(ctx, ownerID, scopeID)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "list_by_owner", status)
	t.metrics.RecordDuration(ctx, "token", "list_by_owner", time.Since(start), status)

	return keys, err
}

// ListRevoked records metrics for revocation list operations.
func (t *tokenStoreWithMetrics) ListRevoked(ctx context.Context) ([]*tokenDomain.RevokedToken, error) {
	start := time.Now()
	revoked, err := t.next.ListRevoked(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "list_revoked", status)
	t.metrics.RecordDuration(ctx, "token", "list_revoked", time.Since(start), status)

	return revoked, err
}

// PurgeExpired records metrics for expired token purge operations.
func (t *tokenStoreWithMetrics) PurgeExpired(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	start := time.Now()
	count, err := t.next.PurgeExpired(ctx, days, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "purge_expired", status)
	t.metrics.RecordDuration(ctx, "token", "purge_expired", time.Since(start), status)

	return count, err
}
