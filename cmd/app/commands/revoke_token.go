package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	tokenUseCase "github.com/allisson/tokenstore/internal/token/usecase"
)

// RunRevokeToken invalidates the token record for the given identifier.
// The identifier is accepted in the same form callers present it; storage
// key derivation happens inside the store. Supports text/JSON output.
//
// Requirements: Database must be migrated and the token must exist.
func RunRevokeToken(
	ctx context.Context,
	tokenStore tokenUseCase.TokenStore,
	logger *slog.Logger,
	writer io.Writer,
	tokenID string,
	output string,
) error {
	// Token identifiers are bearer secrets, keep them out of the logs
	logger.Info("revoking token")

	if err := tokenStore.Revoke(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	// Output result based on format
	if output == "json" {
		outputRevokeJSON(writer, tokenID)
	} else {
		outputRevokeText(writer, tokenID)
	}

	logger.Info("token revoked successfully")

	return nil
}

// outputRevokeText outputs the result in human-readable text format.
func outputRevokeText(writer io.Writer, tokenID string) {
	_, _ = fmt.Fprintln(writer, "Token revoked successfully!")
	_, _ = fmt.Fprintf(writer, "Token ID: %s\n", tokenID)
}

// outputRevokeJSON outputs the result in JSON format for machine consumption.
func outputRevokeJSON(writer io.Writer, tokenID string) {
	result := map[string]interface{}{
		"token_id": tokenID,
		"revoked":  true,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
