package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Tick is called on every interval. Returning an error stops the loop.
type Tick func(ctx context.Context, now time.Time) error

// Run calls tick every interval until ctx is done or tick fails. The timer is
// released on every return path. Ticks are not drift corrected.
func Run(ctx context.Context, interval time.Duration, tick Tick) error {
	if interval <= 0 {
		return fmt.Errorf("worker interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := tick(ctx, now); err != nil {
				return err
			}
		}
	}
}

type Store interface {
	Sweep(now time.Time) int
}

type Worker struct {
	log      *logrus.Entry
	store    Store
	interval time.Duration
}

func New(log *logrus.Logger, store Store, interval time.Duration) *Worker {
	return &Worker{
		log:      log.WithField("component", "worker"),
		store:    store,
		interval: interval,
	}
}

// SweepPreviews drops expired image previews until ctx is cancelled.
func (w *Worker) SweepPreviews(ctx context.Context) error {
	err := Run(ctx, w.interval, func(_ context.Context, now time.Time) error {
		if n := w.store.Sweep(now); n > 0 {
			w.log.Debugf("swept %d expired previews", n)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("worker sweep previews faild: %w", err)
	}
	return nil
}
