package memory

import (
	"context"
	"log/slog"
	"time"
)

// Janitor runs retention cleanup on a timer, decoupled from the read
// path: searches never pay for deletes.
type Janitor struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger
}

// NewJanitor creates a cleanup task over a store.
func NewJanitor(store *Store, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{store: store, interval: interval, logger: logger}
}

// Run sweeps all doctors on each tick until ctx is cancelled. Errors
// are logged and the loop keeps going; cleanup is best-effort.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs one cleanup pass over every doctor with stored
// episodes. Exported so callers can trigger it outside the timer.
func (j *Janitor) Sweep(ctx context.Context) int {
	if j.store.backend == nil {
		return 0
	}

	doctors, err := j.store.backend.DoctorIDs(ctx)
	if err != nil {
		j.logger.Warn("janitor sweep failed", "error", err)
		return 0
	}

	total := 0
	for _, doctorID := range doctors {
		total += j.store.CleanupOld(ctx, doctorID)
	}
	if total > 0 {
		j.logger.Info("janitor sweep complete", "deleted", total)
	}
	return total
}
