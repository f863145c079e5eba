package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	apperrors "github.com/allisson/eventpost/internal/errors"
)

func newTestCoordinator(t *testing.T) *BlobCoordinator {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBlobCoordinator(bucket, logger)
}

func TestBlobCoordinator_LoadAndActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadExistingBlob", func(t *testing.T) {
		coordinator := newTestCoordinator(t)
		require.NoError(t, coordinator.Store(ctx, "q/post-1.json", []byte(`{"type":"log"}`)))

		data, err := coordinator.LoadAndActivate(ctx, "q/post-1.json")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"type":"log"}`), data)

		// Marker must be present after activation
		exists, err := coordinator.bucket.Exists(ctx, "q/post-1.json.active")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("MissingBlobReturnsNotFound", func(t *testing.T) {
		coordinator := newTestCoordinator(t)

		_, err := coordinator.LoadAndActivate(ctx, "q/missing.json")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.Equal(t, apperrors.NotFound, apperrors.Classify(err))
	})

	t.Run("DoubleActivationStillLoads", func(t *testing.T) {
		coordinator := newTestCoordinator(t)
		require.NoError(t, coordinator.Store(ctx, "q/post-2.json", []byte("payload")))

		_, err := coordinator.LoadAndActivate(ctx, "q/post-2.json")
		require.NoError(t, err)

		// Second activation is advisory, not a hard lock
		data, err := coordinator.LoadAndActivate(ctx, "q/post-2.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	})
}

func TestBlobCoordinator_Release(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(t)

	require.NoError(t, coordinator.Store(ctx, "q/post-3.json", []byte("payload")))
	_, err := coordinator.LoadAndActivate(ctx, "q/post-3.json")
	require.NoError(t, err)

	require.NoError(t, coordinator.Release(ctx, "q/post-3.json"))

	exists, err := coordinator.bucket.Exists(ctx, "q/post-3.json.active")
	require.NoError(t, err)
	assert.False(t, exists)

	// Releasing again must not fail
	assert.NoError(t, coordinator.Release(ctx, "q/post-3.json"))
}

func TestBlobCoordinator_Finalize(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 5, 14, 10, 30, 0, 0, time.UTC)

	t.Run("DeleteWithoutArchive", func(t *testing.T) {
		coordinator := newTestCoordinator(t)
		require.NoError(t, coordinator.Store(ctx, "q/post-4.json", []byte("payload")))
		_, err := coordinator.LoadAndActivate(ctx, "q/post-4.json")
		require.NoError(t, err)

		require.NoError(t, coordinator.Finalize(ctx, "q/post-4.json", "project-1", createdAt, false))

		exists, err := coordinator.bucket.Exists(ctx, "q/post-4.json")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ArchiveCopiesBlob", func(t *testing.T) {
		coordinator := newTestCoordinator(t)
		require.NoError(t, coordinator.Store(ctx, "q/post-5.json", []byte("payload")))

		require.NoError(t, coordinator.Finalize(ctx, "q/post-5.json", "project-1", createdAt, true))

		archived, err := coordinator.bucket.ReadAll(ctx, "archive/project-1/2026/05/14/post-5.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), archived)

		exists, err := coordinator.bucket.Exists(ctx, "q/post-5.json")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FinalizeTwiceIsIdempotent", func(t *testing.T) {
		coordinator := newTestCoordinator(t)
		require.NoError(t, coordinator.Store(ctx, "q/post-6.json", []byte("payload")))

		require.NoError(t, coordinator.Finalize(ctx, "q/post-6.json", "project-1", createdAt, true))
		require.NoError(t, coordinator.Finalize(ctx, "q/post-6.json", "project-1", createdAt, true))

		archived, err := coordinator.bucket.ReadAll(ctx, "archive/project-1/2026/05/14/post-6.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), archived)
	})
}

func TestArchiveKey(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "archive/p1/2026/01/02/abc.json", ArchiveKey("p1", createdAt, "q/abc.json"))
	assert.Equal(t, "archive/p1/2026/01/02/abc.json", ArchiveKey("p1", createdAt, "abc.json"))
}
