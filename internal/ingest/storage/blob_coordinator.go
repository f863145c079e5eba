// Package storage implements raw post-body storage on top of gocloud.dev/blob.
//
// Bodies are keyed by an opaque path string. An advisory sidecar marker
// ("<path>.active") flags a post as in-flight so double processing across
// transport redelivery races can be detected; true exclusivity is delegated
// to the queue transport's lease mechanism.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/allisson/eventpost/internal/errors"

	// Register blob storage drivers
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// activeMarkerSuffix is appended to a post's path to form its activation marker key.
const activeMarkerSuffix = ".active"

// OpenBucket opens a blob bucket for the configured URL.
// Supports: file://, s3://, gs://, mem://
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket: %w", err)
	}
	return bucket, nil
}

// BlobCoordinator fetches, locks, releases and finalizes raw post bodies.
type BlobCoordinator struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// NewBlobCoordinator creates a BlobCoordinator backed by the given bucket.
func NewBlobCoordinator(bucket *blob.Bucket, logger *slog.Logger) *BlobCoordinator {
	return &BlobCoordinator{
		bucket: bucket,
		logger: logger,
	}
}

// LoadAndActivate fetches the raw body stored at path and writes the advisory
// activation marker. Returns ErrNotFound if the body is missing or already
// archived. An existing marker is logged as a double-processing signal but
// does not block the load; the marker is best effort, not a lock.
func (c *BlobCoordinator) LoadAndActivate(ctx context.Context, path string) ([]byte, error) {
	data, err := c.bucket.ReadAll(ctx, path)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "event post blob")
		}
		return nil, apperrors.Wrap(err, "failed to read event post blob")
	}

	marker := path + activeMarkerSuffix
	exists, err := c.bucket.Exists(ctx, marker)
	if err == nil && exists {
		c.logger.Warn("event post already marked active, possible duplicate processing",
			slog.String("path", path),
		)
	}

	timestamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := c.bucket.WriteAll(ctx, marker, timestamp, nil); err != nil {
		return nil, apperrors.Wrap(err, "failed to mark event post active")
	}

	return data, nil
}

// Release clears the activation marker so a future redelivery can reprocess
// the post. Releasing an already-released post is a no-op.
func (c *BlobCoordinator) Release(ctx context.Context, path string) error {
	if err := c.bucket.Delete(ctx, path+activeMarkerSuffix); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		return apperrors.Wrap(err, "failed to release event post")
	}
	return nil
}

// Finalize marks the post complete: the body is archived under the project's
// date-partitioned archive prefix when shouldArchive is set, deleted
// otherwise, and the activation marker is removed. Finalizing twice is safe;
// the body is either already gone or already archived.
func (c *BlobCoordinator) Finalize(
	ctx context.Context,
	path string,
	projectID string,
	createdAt time.Time,
	shouldArchive bool,
) error {
	if shouldArchive {
		archiveKey := ArchiveKey(projectID, createdAt, path)
		if err := c.bucket.Copy(ctx, archiveKey, path, nil); err != nil {
			if gcerrors.Code(err) != gcerrors.NotFound {
				return apperrors.Wrap(err, "failed to archive event post blob")
			}
		}
	}

	if err := c.bucket.Delete(ctx, path); err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			return apperrors.Wrap(err, "failed to delete event post blob")
		}
	}

	if err := c.bucket.Delete(ctx, path+activeMarkerSuffix); err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			return apperrors.Wrap(err, "failed to delete activation marker")
		}
	}

	return nil
}

// Store writes a new raw post body at path. Used when spawning retry posts
// and by operational tooling; never used to mutate an existing body.
func (c *BlobCoordinator) Store(ctx context.Context, path string, data []byte) error {
	if err := c.bucket.WriteAll(ctx, path, data, nil); err != nil {
		return apperrors.Wrap(err, "failed to store event post blob")
	}
	return nil
}

// ArchiveKey builds the date-partitioned archive key for a completed post.
func ArchiveKey(projectID string, createdAt time.Time, path string) string {
	return fmt.Sprintf("archive/%s/%s/%s", projectID, createdAt.UTC().Format("2006/01/02"), pathBase(path))
}

// pathBase returns the final segment of a blob path.
func pathBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
