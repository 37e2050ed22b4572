package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	tokenUseCase "github.com/allisson/tokenstore/internal/token/usecase"
)

// RunPurgeExpiredTokens deletes token records that expired more than the
// given number of days ago. Supports dry-run mode to preview the deletion
// count and both text/JSON output formats. A days value of zero purges
// everything already expired.
//
// Requirements: Database must be migrated and accessible.
func RunPurgeExpiredTokens(
	ctx context.Context,
	tokenStore tokenUseCase.TokenStore,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	output string,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("purging expired tokens",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	// Execute deletion or count operation
	count, err := tokenStore.PurgeExpired(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to purge expired tokens: %w", err)
	}

	// Output result based on format
	if output == "json" {
		outputPurgeExpiredJSON(writer, count, days, dryRun)
	} else {
		outputPurgeExpiredText(writer, count, days, dryRun)
	}

	logger.Info("purge completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputPurgeExpiredText outputs the result in human-readable text format.
func outputPurgeExpiredText(writer io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(
			writer,
			"Dry-run mode: Would delete %d expired token(s) older than %d day(s)\n",
			count,
			days,
		)
	} else {
		_, _ = fmt.Fprintf(
			writer,
			"Successfully deleted %d expired token(s) older than %d day(s)\n",
			count,
			days,
		)
	}
}

// outputPurgeExpiredJSON outputs the result in JSON format for machine consumption.
func outputPurgeExpiredJSON(writer io.Writer, count int64, days int, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"days":    days,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
