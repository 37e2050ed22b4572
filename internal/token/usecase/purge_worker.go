package usecase

import (
	"context"
	"log/slog"
	"time"
)

// PurgeWorker periodically deletes expired token rows from storage.
type PurgeWorker struct {
	interval time.Duration
	store    TokenStore
	logger   *slog.Logger
}

// NewPurgeWorker creates a new PurgeWorker.
func NewPurgeWorker(interval time.Duration, store TokenStore, logger *slog.Logger) *PurgeWorker {
	return &PurgeWorker{
		interval: interval,
		store:    store,
		logger:   logger,
	}
}

// Start runs the purge loop until the context is canceled.
func (w *PurgeWorker) Start(ctx context.Context) error {
	if w.logger != nil {
		w.logger.Info("starting token purge worker",
			slog.Duration("interval", w.interval),
		)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if w.logger != nil {
				w.logger.Info("stopping token purge worker")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := w.Purge(ctx); err != nil {
				if w.logger != nil {
					w.logger.Error("failed to purge expired tokens", slog.Any("error", err))
				}
			}
		}
	}
}

// Purge deletes every token row whose expiry has already passed.
func (w *PurgeWorker) Purge(ctx context.Context) error {
	deleted, err := w.store.PurgeExpired(ctx, 0, false)
	if err != nil {
		return err
	}

	if deleted > 0 && w.logger != nil {
		w.logger.Info("purged expired tokens", slog.Int64("deleted", deleted))
	}

	return nil
}
