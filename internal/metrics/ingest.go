package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// IngestMetrics defines the interface for recording event-post ingestion
// metrics: parse counters, per-post event counts, parse timing, batch
// outcome summaries and job dispositions.
type IngestMetrics interface {
	// IncPostsParsed increments the successfully parsed post counter.
	IncPostsParsed(ctx context.Context)

	// IncPostsParseErrors increments the parse failure counter.
	IncPostsParseErrors(ctx context.Context)

	// RecordPostEventCount records how many events the last parsed post produced.
	RecordPostEventCount(ctx context.Context, count int64)

	// RecordParsingTime records the duration of one parse call.
	RecordParsingTime(ctx context.Context, duration time.Duration)

	// RecordBatchOutcome records per-batch processed and errored event counts.
	RecordBatchOutcome(ctx context.Context, processed, errored int64)

	// RecordJob records one finished job with its terminal disposition
	// ("completed", "abandoned") and status ("success", "error").
	RecordJob(ctx context.Context, disposition, status string, duration time.Duration)
}

// ingestMetrics implements IngestMetrics using OpenTelemetry metrics.
type ingestMetrics struct {
	postsParsed      metric.Int64Counter
	postsParseErrors metric.Int64Counter
	postsEventCount  metric.Int64Gauge
	postsParsingTime metric.Float64Histogram
	eventsProcessed  metric.Int64Counter
	eventsErrored    metric.Int64Counter
	jobsTotal        metric.Int64Counter
	jobDuration      metric.Float64Histogram
}

// NewIngestMetrics creates a new IngestMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names (e.g., "eventpost").
// Returns error if meters cannot be initialized.
func NewIngestMetrics(meterProvider metric.MeterProvider, namespace string) (IngestMetrics, error) {
	meter := meterProvider.Meter(namespace)

	postsParsed, err := meter.Int64Counter(
		fmt.Sprintf("%s_posts_parsed_total", namespace),
		metric.WithDescription("Total number of successfully parsed event posts"),
		metric.WithUnit("{post}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts parsed counter: %w", err)
	}

	postsParseErrors, err := meter.Int64Counter(
		fmt.Sprintf("%s_posts_parse_errors_total", namespace),
		metric.WithDescription("Total number of event posts that failed parsing"),
		metric.WithUnit("{post}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse errors counter: %w", err)
	}

	postsEventCount, err := meter.Int64Gauge(
		fmt.Sprintf("%s_posts_event_count", namespace),
		metric.WithDescription("Number of events produced by the most recent parsed post"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post event count gauge: %w", err)
	}

	postsParsingTime, err := meter.Float64Histogram(
		fmt.Sprintf("%s_posts_parsing_time_seconds", namespace),
		metric.WithDescription("Duration of event post parse calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parsing time histogram: %w", err)
	}

	eventsProcessed, err := meter.Int64Counter(
		fmt.Sprintf("%s_events_processed_total", namespace),
		metric.WithDescription("Total number of events fully processed by the pipeline"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create events processed counter: %w", err)
	}

	eventsErrored, err := meter.Int64Counter(
		fmt.Sprintf("%s_events_errored_total", namespace),
		metric.WithDescription("Total number of events that errored in the pipeline"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create events errored counter: %w", err)
	}

	jobsTotal, err := meter.Int64Counter(
		fmt.Sprintf("%s_jobs_total", namespace),
		metric.WithDescription("Total number of finished event post jobs"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_job_duration_seconds", namespace),
		metric.WithDescription("Duration of event post jobs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job duration histogram: %w", err)
	}

	return &ingestMetrics{
		postsParsed:      postsParsed,
		postsParseErrors: postsParseErrors,
		postsEventCount:  postsEventCount,
		postsParsingTime: postsParsingTime,
		eventsProcessed:  eventsProcessed,
		eventsErrored:    eventsErrored,
		jobsTotal:        jobsTotal,
		jobDuration:      jobDuration,
	}, nil
}

// IncPostsParsed increments the successfully parsed post counter.
func (m *ingestMetrics) IncPostsParsed(ctx context.Context) {
	m.postsParsed.Add(ctx, 1)
}

// IncPostsParseErrors increments the parse failure counter.
func (m *ingestMetrics) IncPostsParseErrors(ctx context.Context) {
	m.postsParseErrors.Add(ctx, 1)
}

// RecordPostEventCount records how many events the last parsed post produced.
func (m *ingestMetrics) RecordPostEventCount(ctx context.Context, count int64) {
	m.postsEventCount.Record(ctx, count)
}

// RecordParsingTime records the duration of one parse call in seconds.
func (m *ingestMetrics) RecordParsingTime(ctx context.Context, duration time.Duration) {
	m.postsParsingTime.Record(ctx, duration.Seconds())
}

// RecordBatchOutcome records per-batch processed and errored event counts.
func (m *ingestMetrics) RecordBatchOutcome(ctx context.Context, processed, errored int64) {
	if processed > 0 {
		m.eventsProcessed.Add(ctx, processed)
	}
	if errored > 0 {
		m.eventsErrored.Add(ctx, errored)
	}
}

// RecordJob records one finished job with disposition and status labels.
func (m *ingestMetrics) RecordJob(ctx context.Context, disposition, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("disposition", disposition),
		attribute.String("status", status),
	)
	m.jobsTotal.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, duration.Seconds(), attrs)
}

// NoOpIngestMetrics is a no-op implementation of IngestMetrics for when metrics are disabled.
type NoOpIngestMetrics struct{}

// NewNoOpIngestMetrics creates a no-op IngestMetrics implementation.
func NewNoOpIngestMetrics() IngestMetrics {
	return &NoOpIngestMetrics{}
}

// IncPostsParsed does nothing when metrics are disabled.
func (n *NoOpIngestMetrics) IncPostsParsed(ctx context.Context) {
	// No-op
}

// IncPostsParseErrors does nothing when metrics are disabled.
func (n *NoOpIngestMetrics) IncPostsParseErrors(ctx context.Context) {
	// No-op
}

// RecordPostEventCount does nothing when metrics are disabled.
func (n *NoOpIngestMetrics) RecordPostEventCount(ctx context.Context, count int64) {
	// No-op
}

// RecordParsingTime does nothing when metrics are disabled.
func (n *NoOpIngestMetrics) RecordParsingTime(ctx context.Context, duration time.Duration) {
	// No-op
}

// RecordBatchOutcome does nothing when metrics are disabled.
func (n *NoOpIngestMetrics) RecordBatchOutcome(ctx context.Context, processed, errored int64) {
	// No-op
}

// RecordJob does nothing when metrics are disabled.
func (n *NoOpIngestMetrics) RecordJob(ctx context.Context, disposition, status string, duration time.Duration) {
	// No-op
}
