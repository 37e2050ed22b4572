package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
	tokenUseCase "github.com/allisson/tokenstore/internal/token/usecase"
)

// RunListRevokedTokens prints the revocation list: storage key and expiry
// of every revoked token record that has not yet expired. Supports text/JSON
// output formats.
//
// Requirements: Database must be migrated and accessible.
func RunListRevokedTokens(
	ctx context.Context,
	tokenStore tokenUseCase.TokenStore,
	logger *slog.Logger,
	writer io.Writer,
	output string,
) error {
	logger.Info("listing revoked tokens")

	revoked, err := tokenStore.ListRevoked(ctx)
	if err != nil {
		return fmt.Errorf("failed to list revoked tokens: %w", err)
	}

	// Output result based on format
	if output == "json" {
		outputRevokedListJSON(writer, revoked)
	} else {
		outputRevokedListText(writer, revoked)
	}

	logger.Info("revocation list ready", slog.Int("count", len(revoked)))

	return nil
}

// outputRevokedListText outputs the revocation list in human-readable text format.
func outputRevokedListText(writer io.Writer, revoked []*tokenDomain.RevokedToken) {
	_, _ = fmt.Fprintf(writer, "Revoked token(s): %d\n", len(revoked))

	for _, token := range revoked {
		_, _ = fmt.Fprintf(
			writer,
			"%s  expires: %s\n",
			token.Key,
			token.ExpiresAt.UTC().Format(time.RFC3339),
		)
	}
}

// outputRevokedListJSON outputs the revocation list in JSON format for machine consumption.
func outputRevokedListJSON(writer io.Writer, revoked []*tokenDomain.RevokedToken) {
	entries := make([]map[string]interface{}, 0, len(revoked))
	for _, token := range revoked {
		entries = append(entries, map[string]interface{}{
			"key":        token.Key,
			"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	result := map[string]interface{}{
		"count":   len(revoked),
		"revoked": entries,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
