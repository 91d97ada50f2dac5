package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/linkup-app/linkup-api/pkg/logger"

	"github.com/linkup-app/linkup-api/internal/repository"
)

// InvitationCleanupWorker removes resolved and stale invitation rows on an
// interval. Expiry itself is enforced lazily on read; this sweep only
// bounds table growth.
type InvitationCleanupWorker struct {
	repo          repository.InvitationRepository
	retention     time.Duration
	sweepInterval time.Duration
	logger        *logger.Logger
}

func NewInvitationCleanupWorker(repo repository.InvitationRepository, retention, sweepInterval time.Duration, log *logger.Logger) *InvitationCleanupWorker {
	return &InvitationCleanupWorker{
		repo:          repo,
		retention:     retention,
		sweepInterval: sweepInterval,
		logger:        log,
	}
}

func (w *InvitationCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error(err, "invitation cleanup failed")
			}
		}
	}
}

func (w *InvitationCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention)

	rows, err := w.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete stale invitations: %w", err)
	}

	if rows > 0 {
		w.logger.Info(fmt.Sprintf("removed %d stale invitations older than %v", rows, cutoff))
	}
	return nil
}
