package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestPayloadGuard_Unpack(t *testing.T) {
	const limit = 100
	guard := NewPayloadGuard(limit, 10)

	t.Run("PassThroughUncompressed", func(t *testing.T) {
		payload := []byte(`{"type":"log"}`)
		out, err := guard.Unpack(payload, "")
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("DecompressGzip", func(t *testing.T) {
		payload := []byte(`{"type":"log","message":"hello"}`)
		out, err := guard.Unpack(gzipBytes(t, payload), domain.ContentEncodingGzip)
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("ExactLimitAccepted", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), limit)
		out, err := guard.Unpack(payload, "")
		require.NoError(t, err)
		assert.Len(t, out, limit)
	})

	t.Run("OneOverLimitRejected", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), limit+1)
		_, err := guard.Unpack(payload, "")
		require.Error(t, err)
		assert.Equal(t, apperrors.PermanentPayload, apperrors.Classify(err))
		assert.Contains(t, err.Error(), "exceeds limit of 100 bytes")
	})

	t.Run("MultipliedLimitAppliesToCompressedPosts", func(t *testing.T) {
		// limit*10 uncompressed bytes arriving compressed is accepted
		payload := bytes.Repeat([]byte("a"), limit*10)
		out, err := guard.Unpack(gzipBytes(t, payload), domain.ContentEncodingGzip)
		require.NoError(t, err)
		assert.Len(t, out, limit*10)
	})

	t.Run("OneOverMultipliedLimitRejected", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), limit*10+1)
		_, err := guard.Unpack(gzipBytes(t, payload), domain.ContentEncodingGzip)
		require.Error(t, err)
		assert.Equal(t, apperrors.PermanentPayload, apperrors.Classify(err))
		assert.Contains(t, err.Error(), "exceeds limit of 1000 bytes")
	})

	t.Run("DecompressionFailureIsPermanent", func(t *testing.T) {
		corrupt := []byte("definitely not gzip")
		_, err := guard.Unpack(corrupt, domain.ContentEncodingGzip)
		require.Error(t, err)
		assert.Equal(t, apperrors.PermanentPayload, apperrors.Classify(err))
		// Failure detail must carry the compressed byte count
		assert.Contains(t, err.Error(), "19 bytes")
	})

	t.Run("UnsupportedEncodingIsPermanent", func(t *testing.T) {
		_, err := guard.Unpack([]byte("payload"), "zstd")
		require.Error(t, err)
		assert.Equal(t, apperrors.PermanentPayload, apperrors.Classify(err))
		assert.True(t, strings.Contains(err.Error(), "zstd"))
	})
}

func TestCompress(t *testing.T) {
	payload := bytes.Repeat([]byte("event data "), 200)

	compressed, err := Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(payload))

	// Round-trips through the guard
	guard := NewPayloadGuard(len(payload), 10)
	out, err := guard.Unpack(compressed, domain.ContentEncodingGzip)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}
