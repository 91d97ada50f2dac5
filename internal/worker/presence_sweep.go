package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/linkup-app/linkup-api/pkg/logger"

	"github.com/linkup-app/linkup-api/internal/service/presence"
)

// PresenceSweepWorker expires stale availability records on an interval so
// subscribers of users who are never read still see the change promptly.
type PresenceSweepWorker struct {
	service       *presence.Service
	sweepInterval time.Duration
	logger        *logger.Logger
}

func NewPresenceSweepWorker(service *presence.Service, sweepInterval time.Duration, log *logger.Logger) *PresenceSweepWorker {
	return &PresenceSweepWorker{
		service:       service,
		sweepInterval: sweepInterval,
		logger:        log,
	}
}

func (w *PresenceSweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleared, err := w.service.ExpireStale(ctx)
			if err != nil {
				w.logger.Error(err, "presence sweep failed")
				continue
			}
			if cleared > 0 {
				w.logger.Info(fmt.Sprintf("expired %d stale presence records", cleared))
			}
		}
	}
}
