package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tokenstore/internal/testutil"
	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
)

// newTestToken builds a valid token record with owner and scope identifiers
// in the payload, expiring at the given instant.
func newTestToken(key string, expiresAt time.Time) *tokenDomain.Token {
	return &tokenDomain.Token{
		Key: key,
		Payload: map[string]any{
			"owner":  map[string]any{"id": "owner-1"},
			"scope":  map[string]any{"id": "scope-1"},
			"method": "password",
		},
		Valid:     true,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: &expiresAt,
	}
}

func TestNewPostgreSQLTokenRepository(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLTokenRepository{}, repo)
}

func TestPostgreSQLTokenRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	token := newTestToken("pg-create-token", expiresAt)

	err := repo.Create(ctx, token)
	require.NoError(t, err)

	// Verify by fetching
	retrieved, err := repo.Get(ctx, token.Key)
	require.NoError(t, err)
	assert.Equal(t, token.Key, retrieved.Key)
	assert.Equal(t, token.Payload, retrieved.Payload)
	assert.True(t, retrieved.Valid)
	assert.WithinDuration(t, token.CreatedAt, retrieved.CreatedAt, time.Second)
	require.NotNil(t, retrieved.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *retrieved.ExpiresAt, time.Second)
}

func TestPostgreSQLTokenRepository_Create_DuplicateKey(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	token := newTestToken("pg-duplicate-token", expiresAt)

	err := repo.Create(ctx, token)
	require.NoError(t, err)

	// Creating the same storage key again must report a conflict
	err = repo.Create(ctx, newTestToken("pg-duplicate-token", expiresAt))
	assert.ErrorIs(t, err, tokenDomain.ErrTokenAlreadyExists)
}

func TestPostgreSQLTokenRepository_Get_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "pg-missing-token")
	assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRepository_Get_RevokedToken(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	token := newTestToken("pg-revoked-get-token", expiresAt)
	require.NoError(t, repo.Create(ctx, token))
	require.NoError(t, repo.Revoke(ctx, token.Key))

	// Revoked records read the same as absent ones
	_, err := repo.Get(ctx, token.Key)
	assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRepository_Get_ExpiredToken(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(-time.Hour)
	token := newTestToken("pg-expired-get-token", expiresAt)
	require.NoError(t, repo.Create(ctx, token))

	// Expiration is evaluated by the caller, not the repository
	retrieved, err := repo.Get(ctx, token.Key)
	require.NoError(t, err)
	assert.True(t, retrieved.IsExpired())
}

func TestPostgreSQLTokenRepository_Revoke(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	token := newTestToken("pg-revoke-token", expiresAt)
	require.NoError(t, repo.Create(ctx, token))

	err := repo.Revoke(ctx, token.Key)
	require.NoError(t, err)

	// The record is kept, flipped to invalid
	count := testutil.CountTokenRows(t, db, "postgres", token.Key)
	assert.Equal(t, 1, count)

	var valid bool
	err = db.QueryRow("SELECT valid FROM tokens WHERE id = $1", token.Key).Scan(&valid)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestPostgreSQLTokenRepository_Revoke_AlreadyRevoked(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	token := newTestToken("pg-double-revoke-token", expiresAt)
	require.NoError(t, repo.Create(ctx, token))
	require.NoError(t, repo.Revoke(ctx, token.Key))

	// Second revoke finds no valid record
	err := repo.Revoke(ctx, token.Key)
	assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRepository_Revoke_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	err := repo.Revoke(ctx, "pg-missing-revoke-token")
	assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRepository_ListActive(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	// Two live tokens, one expired, one revoked
	require.NoError(t, repo.Create(ctx, newTestToken("pg-active-1", future)))
	require.NoError(t, repo.Create(ctx, newTestToken("pg-active-2", future)))
	require.NoError(t, repo.Create(ctx, newTestToken("pg-expired", past)))
	revoked := newTestToken("pg-revoked", future)
	require.NoError(t, repo.Create(ctx, revoked))
	require.NoError(t, repo.Revoke(ctx, revoked.Key))

	tokens, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	keys := []string{tokens[0].Key, tokens[1].Key}
	assert.ElementsMatch(t, []string{"pg-active-1", "pg-active-2"}, keys)

	// Payloads come back with the records
	for _, token := range tokens {
		ownerID, ok := token.OwnerID()
		assert.True(t, ok)
		assert.Equal(t, "owner-1", ownerID)
	}
}

func TestPostgreSQLTokenRepository_ListActive_Empty(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	tokens, err := repo.ListActive(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.NotNil(t, tokens)
	assert.Empty(t, tokens)
}

func TestPostgreSQLTokenRepository_ListRevoked(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	// Revoked and not yet expired: listed
	listed := newTestToken("pg-revoked-listed", future)
	require.NoError(t, repo.Create(ctx, listed))
	require.NoError(t, repo.Revoke(ctx, listed.Key))

	// Revoked but expired: omitted
	skipped := newTestToken("pg-revoked-expired", past)
	require.NoError(t, repo.Create(ctx, skipped))
	require.NoError(t, repo.Revoke(ctx, skipped.Key))

	// Still valid: omitted
	require.NoError(t, repo.Create(ctx, newTestToken("pg-still-valid", future)))

	revoked, err := repo.ListRevoked(ctx, now)
	require.NoError(t, err)
	require.Len(t, revoked, 1)
	assert.Equal(t, "pg-revoked-listed", revoked[0].Key)
	assert.WithinDuration(t, future, revoked[0].ExpiresAt, time.Second)
}

func TestPostgreSQLTokenRepository_ListRevoked_Empty(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	revoked, err := repo.ListRevoked(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.NotNil(t, revoked)
	assert.Empty(t, revoked)
}

func TestPostgreSQLTokenRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	// Expired valid token
	require.NoError(t, repo.Create(ctx, newTestToken("pg-stale-valid", past)))

	// Expired revoked token: purged as well
	staleRevoked := newTestToken("pg-stale-revoked", past)
	require.NoError(t, repo.Create(ctx, staleRevoked))
	require.NoError(t, repo.Revoke(ctx, staleRevoked.Key))

	// Live token survives
	require.NoError(t, repo.Create(ctx, newTestToken("pg-live", future)))

	count, err := repo.DeleteExpired(ctx, now.Add(-time.Hour), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Purged rows are physically gone, regardless of validity
	assert.Equal(t, 0, testutil.CountTokenRows(t, db, "postgres", "pg-stale-valid"))
	assert.Equal(t, 0, testutil.CountTokenRows(t, db, "postgres", "pg-stale-revoked"))
	assert.Equal(t, 1, testutil.CountTokenRows(t, db, "postgres", "pg-live"))
}

func TestPostgreSQLTokenRepository_DeleteExpired_WithLimit(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)

	require.NoError(t, repo.Create(ctx, newTestToken("pg-batch-1", past)))
	require.NoError(t, repo.Create(ctx, newTestToken("pg-batch-2", past)))
	require.NoError(t, repo.Create(ctx, newTestToken("pg-batch-3", past)))

	// First batch removes up to the limit
	count, err := repo.DeleteExpired(ctx, now, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Second batch drains the remainder
	count, err = repo.DeleteExpired(ctx, now, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Nothing left to purge
	count, err = repo.DeleteExpired(ctx, now, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPostgreSQLTokenRepository_DeleteExpired_ZeroTime(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	// Test with zero time
	count, err := repo.DeleteExpired(ctx, time.Time{}, 0)
	assert.Error(t, err)
	assert.Equal(t, int64(0), count)
	assert.Contains(t, err.Error(), "olderThan timestamp cannot be zero")
}

func TestPostgreSQLTokenRepository_CountExpired(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	require.NoError(t, repo.Create(ctx, newTestToken("pg-count-stale", past)))
	staleRevoked := newTestToken("pg-count-stale-revoked", past)
	require.NoError(t, repo.Create(ctx, staleRevoked))
	require.NoError(t, repo.Revoke(ctx, staleRevoked.Key))
	require.NoError(t, repo.Create(ctx, newTestToken("pg-count-live", future)))

	count, err := repo.CountExpired(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Counting does not delete
	assert.Equal(t, 1, testutil.CountTokenRows(t, db, "postgres", "pg-count-stale"))
}

func TestPostgreSQLTokenRepository_CountExpired_ZeroTime(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	// Test with zero time
	count, err := repo.CountExpired(ctx, time.Time{})
	assert.Error(t, err)
	assert.Equal(t, int64(0), count)
	assert.Contains(t, err.Error(), "olderThan timestamp cannot be zero")
}
