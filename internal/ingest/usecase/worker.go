package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/eventpost/internal/errors"
)

// Worker drains the event-post queue with a pool of goroutines, throttled
// by a shared token-bucket poll limiter.
type Worker struct {
	queue       QueueTransport
	useCase     EventPostUseCase
	limiter     *rate.Limiter
	workerCount int
	logger      *slog.Logger
}

// NewWorker creates a worker pool. pollRatePerSec and pollBurst bound how
// aggressively the pool polls the queue across all goroutines.
func NewWorker(
	queue QueueTransport,
	useCase EventPostUseCase,
	workerCount int,
	pollRatePerSec float64,
	pollBurst int,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		queue:       queue,
		useCase:     useCase,
		limiter:     rate.NewLimiter(rate.Limit(pollRatePerSec), pollBurst),
		workerCount: workerCount,
		logger:      logger,
	}
}

// Run starts the pool and blocks until the context is cancelled and every
// goroutine has drained its in-flight entry.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("starting event post workers", slog.Int("worker_count", w.workerCount))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workerCount; i++ {
		workerID := i
		g.Go(func() error {
			return w.drain(ctx, workerID)
		})
	}

	err := g.Wait()
	w.logger.Info("event post workers stopped")
	return err
}

func (w *Worker) drain(ctx context.Context, workerID int) error {
	logger := w.logger.With(slog.Int("worker_id", workerID))

	for {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil
		}

		entry, err := w.queue.Dequeue(ctx)
		if err != nil {
			if apperrors.Classify(err) == apperrors.Cancelled {
				return nil
			}
			logger.Error("failed to dequeue event post", slog.String("error", err.Error()))
			continue
		}

		disposition, err := w.useCase.Process(ctx, entry)
		if err != nil {
			logger.Error("event post job failed",
				slog.String("entry_id", entry.ID),
				slog.String("disposition", string(disposition)),
				slog.String("error", err.Error()),
			)
			continue
		}

		logger.Debug("event post job finished",
			slog.String("entry_id", entry.ID),
			slog.String("disposition", string(disposition)),
		)
	}
}
