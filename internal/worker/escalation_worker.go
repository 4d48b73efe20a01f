package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/facility-helpdesk/internal/scheduler"
)

// StartEscalationWorker runs the scanner on a fixed cadence until the
// context ends. Scan failures are logged; the loop keeps going.
func StartEscalationWorker(ctx context.Context, scanner *scheduler.Scanner, interval time.Duration, logger *zap.Logger) {
	if scanner == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := scanner.ScanAndEscalate(ctx); err != nil {
					logger.Error("escalation scan failed", zap.Error(err))
				}
			}
		}
	}()
}
