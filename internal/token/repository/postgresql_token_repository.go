// Package repository implements token record persistence over SQL databases.
// Records are indexed by derived storage key with validity and expiration
// predicates served by the database; payload content stays an opaque JSON
// blob. PostgreSQL lives here, MySQL in the mysql subpackage.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/allisson/tokenstore/internal/database"
	apperrors "github.com/allisson/tokenstore/internal/errors"
	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgreSQLTokenRepository implements token persistence for PostgreSQL databases.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository instance.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new token record. Returns ErrTokenAlreadyExists when the
// storage key is already present.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	payloadJSON, err := json.Marshal(token.Payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal payload")
	}

	query := `INSERT INTO tokens (id, payload, valid, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.Key,
		payloadJSON,
		token.Valid,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return tokenDomain.ErrTokenAlreadyExists
		}
		return apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to create token")
	}
	return nil
}

// Get retrieves a non-revoked token record by storage key. Revoked and absent
// records are both ErrTokenNotFound; expiration is not evaluated here.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, key string) (*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, payload, valid, created_at, expires_at
			  FROM tokens
			  WHERE id = $1 AND valid = TRUE`

	var token tokenDomain.Token
	var payloadJSON []byte

	err := querier.QueryRowContext(ctx, query, key).Scan(
		&token.Key,
		&payloadJSON,
		&token.Valid,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenDomain.ErrTokenNotFound
		}
		return nil, apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to get token")
	}

	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &token.Payload); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal payload")
		}
	}

	return &token, nil
}

// Revoke flips a token record to invalid. The statement only matches records
// that are still valid, so of two concurrent revokes exactly one succeeds and
// the other observes ErrTokenNotFound. Revoked records are kept, not deleted.
func (p *PostgreSQLTokenRepository) Revoke(ctx context.Context, key string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET valid = FALSE WHERE id = $1 AND valid = TRUE`

	result, err := querier.ExecContext(ctx, query, key)
	if err != nil {
		return apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to revoke token")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}

	if rowsAffected == 0 {
		return tokenDomain.ErrTokenNotFound
	}

	return nil
}

// ListActive retrieves every valid token record expiring after the given
// instant, in storage scan order. Payload filtering belongs to the caller.
// All timestamps are expected in UTC.
func (p *PostgreSQLTokenRepository) ListActive(
	ctx context.Context,
	expiresAfter time.Time,
) ([]*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, payload, valid, created_at, expires_at
			  FROM tokens
			  WHERE expires_at > $1 AND valid = TRUE`

	rows, err := querier.QueryContext(ctx, query, expiresAfter)
	if err != nil {
		return nil, apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to list active tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*tokenDomain.Token
	for rows.Next() {
		var token tokenDomain.Token
		var payloadJSON []byte

		err := rows.Scan(
			&token.Key,
			&payloadJSON,
			&token.Valid,
			&token.CreatedAt,
			&token.ExpiresAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}

		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &token.Payload); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal payload")
			}
		}

		tokens = append(tokens, &token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating tokens")
	}

	if tokens == nil {
		tokens = make([]*tokenDomain.Token, 0)
	}

	return tokens, nil
}

// ListRevoked retrieves the storage key and expiry of every revoked token
// record expiring after the given instant. No payloads are read.
// All timestamps are expected in UTC.
func (p *PostgreSQLTokenRepository) ListRevoked(
	ctx context.Context,
	expiresAfter time.Time,
) ([]*tokenDomain.RevokedToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, expires_at
			  FROM tokens
			  WHERE expires_at > $1 AND valid = FALSE`

	rows, err := querier.QueryContext(ctx, query, expiresAfter)
	if err != nil {
		return nil, apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to list revoked tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*tokenDomain.RevokedToken
	for rows.Next() {
		var token tokenDomain.RevokedToken

		if err := rows.Scan(&token.Key, &token.ExpiresAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan revoked token")
		}

		tokens = append(tokens, &token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating revoked tokens")
	}

	if tokens == nil {
		tokens = make([]*tokenDomain.RevokedToken, 0)
	}

	return tokens, nil
}

// DeleteExpired deletes token records that expired before the specified
// timestamp, regardless of validity. A positive limit caps the rows removed
// by this call; zero or negative removes all matches in one statement.
// Returns the number of deleted records. Uses transaction support via
// database.GetTx(). All timestamps are expected in UTC.
func (p *PostgreSQLTokenRepository) DeleteExpired(
	ctx context.Context,
	olderThan time.Time,
	limit int,
) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	var result sql.Result
	var err error

	if limit > 0 {
		query := `DELETE FROM tokens
				  WHERE id IN (SELECT id FROM tokens WHERE expires_at < $1 LIMIT $2)`
		result, err = querier.ExecContext(ctx, query, olderThan, limit)
	} else {
		query := `DELETE FROM tokens WHERE expires_at < $1`
		result, err = querier.ExecContext(ctx, query, olderThan)
	}
	if err != nil {
		return 0, apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to delete expired tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return rowsAffected, nil
}

// CountExpired counts token records that expired before the specified
// timestamp without deleting them. Uses transaction support via
// database.GetTx(). All timestamps are expected in UTC.
func (p *PostgreSQLTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM tokens WHERE expires_at < $1`

	var count int64
	err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count)
	if err != nil {
		return 0, apperrors.WrapWithClass(tokenDomain.ErrStorageUnavailable, err, "failed to count expired tokens")
	}

	return count, nil
}
