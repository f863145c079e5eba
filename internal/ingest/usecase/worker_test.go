package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/eventpost/internal/ingest/domain"
	"github.com/allisson/eventpost/internal/ingest/usecase/mocks"
)

// fakeWorkerQueue delivers entries from a channel and blocks like a real
// transport when the queue is empty.
type fakeWorkerQueue struct {
	entries chan *domain.QueueEntry
}

func (f *fakeWorkerQueue) Dequeue(ctx context.Context) (*domain.QueueEntry, error) {
	select {
	case entry := <-f.entries:
		return entry, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeWorkerQueue) Complete(ctx context.Context, entry *domain.QueueEntry) error {
	return nil
}

func (f *fakeWorkerQueue) Abandon(ctx context.Context, entry *domain.QueueEntry) error {
	return nil
}

func (f *fakeWorkerQueue) Enqueue(ctx context.Context, info *domain.EventPostInfo) error {
	return nil
}

func TestWorker_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("ProcessesEntriesUntilCancelled", func(t *testing.T) {
		queue := &fakeWorkerQueue{entries: make(chan *domain.QueueEntry, 2)}
		queue.entries <- &domain.QueueEntry{ID: "entry-1", Value: &domain.EventPostInfo{}}
		queue.entries <- &domain.QueueEntry{ID: "entry-2", Value: &domain.EventPostInfo{}}

		processed := make(chan string, 2)
		useCase := &mocks.MockEventPostUseCase{}
		useCase.On("Process", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				entry := args.Get(1).(*domain.QueueEntry)
				processed <- entry.ID
			}).
			Return(domain.DispositionProcessed, nil).
			Times(2)

		worker := NewWorker(queue, useCase, 2, 1000, 10, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- worker.Run(ctx)
		}()

		for i := 0; i < 2; i++ {
			select {
			case <-processed:
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for entries to be processed")
			}
		}

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for workers to stop")
		}

		useCase.AssertExpectations(t)
	})

	t.Run("JobFailureDoesNotStopTheLoop", func(t *testing.T) {
		queue := &fakeWorkerQueue{entries: make(chan *domain.QueueEntry, 2)}
		queue.entries <- &domain.QueueEntry{ID: "entry-1", Value: &domain.EventPostInfo{}}
		queue.entries <- &domain.QueueEntry{ID: "entry-2", Value: &domain.EventPostInfo{}}

		processed := make(chan string, 2)
		useCase := &mocks.MockEventPostUseCase{}
		useCase.On("Process", mock.Anything, mock.MatchedBy(func(e *domain.QueueEntry) bool {
			return e.ID == "entry-1"
		})).
			Run(func(args mock.Arguments) { processed <- "entry-1" }).
			Return(domain.DispositionErrored, errors.New("queue ack failed"))
		useCase.On("Process", mock.Anything, mock.MatchedBy(func(e *domain.QueueEntry) bool {
			return e.ID == "entry-2"
		})).
			Run(func(args mock.Arguments) { processed <- "entry-2" }).
			Return(domain.DispositionProcessed, nil)

		worker := NewWorker(queue, useCase, 1, 1000, 10, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- worker.Run(ctx)
		}()

		for i := 0; i < 2; i++ {
			select {
			case <-processed:
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for entries to be processed")
			}
		}

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for worker to stop")
		}

		useCase.AssertExpectations(t)
	})
}
