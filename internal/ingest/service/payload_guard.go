// Package service implements the processing services sitting between raw
// post bytes and the job orchestrator: payload guarding and event parsing.
package service

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// PayloadGuard decompresses raw post bytes and enforces the uncompressed
// size limit. Guard failures are permanent payload defects: retrying would
// reproduce the same result, so the job completes the entry as failed.
type PayloadGuard struct {
	maxUncompressedBytes     int
	compressedSizeMultiplier int
}

// NewPayloadGuard creates a PayloadGuard with the configured limits.
func NewPayloadGuard(maxUncompressedBytes, compressedSizeMultiplier int) *PayloadGuard {
	return &PayloadGuard{
		maxUncompressedBytes:     maxUncompressedBytes,
		compressedSizeMultiplier: compressedSizeMultiplier,
	}
}

// Unpack decompresses data according to contentEncoding and bound-checks the
// result. The size limit is inflated by the configured multiplier when an
// encoding is present, since one compressed payload may bundle a large batch.
// Returns the uncompressed bytes on success.
func (g *PayloadGuard) Unpack(data []byte, contentEncoding string) ([]byte, error) {
	limit := g.maxUncompressedBytes
	compressedSize := len(data)

	if contentEncoding != "" {
		limit *= g.compressedSizeMultiplier

		uncompressed, err := g.decompress(data, contentEncoding, limit)
		if err != nil {
			return nil, apperrors.Wrap(
				apperrors.ErrPermanentPayload,
				fmt.Sprintf("unable to decompress %q payload of %d bytes: %v", contentEncoding, compressedSize, err),
			)
		}
		data = uncompressed
	}

	if len(data) > limit {
		return nil, apperrors.Wrap(
			apperrors.ErrPermanentPayload,
			fmt.Sprintf(
				"payload size %d bytes (compressed %d bytes) exceeds limit of %d bytes",
				len(data), compressedSize, limit,
			),
		)
	}

	return data, nil
}

// decompress inflates data up to limit+1 bytes so oversized payloads are
// detected without buffering an unbounded stream.
func (g *PayloadGuard) decompress(data []byte, contentEncoding string, limit int) ([]byte, error) {
	if contentEncoding != domain.ContentEncodingGzip {
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	uncompressed, err := io.ReadAll(io.LimitReader(reader, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	return uncompressed, nil
}

// Compress gzips data for retry posts whose serialized form crosses the
// compression threshold.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compressing payload: %w", err)
	}
	return buf.Bytes(), nil
}
