package domain

import (
	"github.com/allisson/tokenstore/internal/errors"
)

var (
	// ErrTokenNotFound indicates the token does not exist, has expired, or has
	// been revoked. The cause is deliberately not distinguishable by callers.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrTokenAlreadyExists indicates a token with the same storage key already exists.
	ErrTokenAlreadyExists = errors.Wrap(errors.ErrConflict, "token already exists")

	// ErrStorageUnavailable indicates the backing storage failed while serving the request.
	ErrStorageUnavailable = errors.Wrap(errors.ErrUnavailable, "token storage unavailable")
)
