package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIngestMetrics(t *testing.T) {
	t.Run("Success_CreateIngestMetrics", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		ingestMetrics, err := NewIngestMetrics(provider.MeterProvider(), "test_app")

		require.NoError(t, err)
		assert.NotNil(t, ingestMetrics)
	})
}

func TestIngestMetrics_Recording(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	im, err := NewIngestMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("Success_RecordParseCounters", func(t *testing.T) {
		// Should not panic
		im.IncPostsParsed(ctx)
		im.IncPostsParseErrors(ctx)
	})

	t.Run("Success_RecordEventCountAndTiming", func(t *testing.T) {
		im.RecordPostEventCount(ctx, 42)
		im.RecordParsingTime(ctx, 35*time.Millisecond)
	})

	t.Run("Success_RecordBatchOutcome", func(t *testing.T) {
		im.RecordBatchOutcome(ctx, 4, 1)
		im.RecordBatchOutcome(ctx, 0, 0)
	})

	t.Run("Success_RecordJobDispositions", func(t *testing.T) {
		im.RecordJob(ctx, "completed", "success", 120*time.Millisecond)
		im.RecordJob(ctx, "abandoned", "error", 5*time.Millisecond)
	})
}

func TestIngestMetrics_Exposition(t *testing.T) {
	provider, err := NewProvider("expo_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	im, err := NewIngestMetrics(provider.MeterProvider(), "expo_test")
	require.NoError(t, err)

	ctx := context.Background()
	im.IncPostsParsed(ctx)
	im.IncPostsParsed(ctx)
	im.IncPostsParseErrors(ctx)
	im.RecordPostEventCount(ctx, 7)
	im.RecordBatchOutcome(ctx, 6, 1)
	im.RecordJob(ctx, "completed", "success", 10*time.Millisecond)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	output := recorder.Body.String()
	assert.Contains(t, output, "expo_test_posts_parsed_total")
	assert.Contains(t, output, "expo_test_posts_parse_errors_total")
	assert.Contains(t, output, "expo_test_posts_event_count")
	assert.Contains(t, output, "expo_test_events_processed_total")
	assert.Contains(t, output, "expo_test_events_errored_total")
	assert.Contains(t, output, "expo_test_jobs_total")
}

func TestNewNoOpIngestMetrics(t *testing.T) {
	noOpMetrics := NewNoOpIngestMetrics()

	assert.NotNil(t, noOpMetrics)
	assert.IsType(t, &NoOpIngestMetrics{}, noOpMetrics)

	t.Run("NoOp_RecordingDoesNotPanic", func(t *testing.T) {
		ctx := context.Background()
		noOpMetrics.IncPostsParsed(ctx)
		noOpMetrics.IncPostsParseErrors(ctx)
		noOpMetrics.RecordPostEventCount(ctx, 1)
		noOpMetrics.RecordParsingTime(ctx, time.Millisecond)
		noOpMetrics.RecordBatchOutcome(ctx, 1, 0)
		noOpMetrics.RecordJob(ctx, "completed", "success", time.Millisecond)
	})
}
