package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/allisson/eventpost/internal/ingest/domain"
	"github.com/allisson/eventpost/internal/ingest/parser"
	"github.com/allisson/eventpost/internal/metrics"
)

// EventParserAdapter decodes post bytes to text, delegates to the parser
// registry and normalizes the resulting events for pipeline entry.
//
// Parser failures are not fatal to the job: they are counted, logged and
// surfaced as zero events.
type EventParserAdapter struct {
	registry          *parser.Registry
	metrics           metrics.IngestMetrics
	logger            *slog.Logger
	internalProjectID string
}

// NewEventParserAdapter creates an EventParserAdapter.
func NewEventParserAdapter(
	registry *parser.Registry,
	ingestMetrics metrics.IngestMetrics,
	logger *slog.Logger,
	internalProjectID string,
) *EventParserAdapter {
	return &EventParserAdapter{
		registry:          registry,
		metrics:           ingestMetrics,
		logger:            logger,
		internalProjectID: internalProjectID,
	}
}

// ParseEvents decodes payload using the post's declared character set
// (UTF-8 when unset), parses it with the parser selected by API version and
// user agent, and normalizes every event. A parse failure yields zero events.
func (a *EventParserAdapter) ParseEvents(
	ctx context.Context,
	info *domain.EventPostInfo,
	payload []byte,
	createdUtc time.Time,
) []*domain.ParsedEvent {
	start := time.Now()

	text, err := decodeText(payload, info.CharSet)
	if err != nil {
		a.recordParseFailure(ctx, info, err)
		return nil
	}

	eventParser := a.registry.Resolve(info.APIVersion, info.UserAgent)
	events, err := eventParser.Parse(text)
	if err != nil {
		a.recordParseFailure(ctx, info, err)
		return nil
	}

	for _, event := range events {
		normalizeEvent(event, info.ProjectID, createdUtc)
	}

	a.metrics.IncPostsParsed(ctx)
	a.metrics.RecordPostEventCount(ctx, int64(len(events)))
	a.metrics.RecordParsingTime(ctx, time.Since(start))

	return events
}

// recordParseFailure counts and logs one failed parse call. Posts belonging
// to the platform's own internal project log at debug level so a bad
// self-monitoring payload cannot feed an error-noise loop.
func (a *EventParserAdapter) recordParseFailure(ctx context.Context, info *domain.EventPostInfo, err error) {
	a.metrics.IncPostsParseErrors(ctx)

	level := slog.LevelError
	if a.internalProjectID != "" && info.ProjectID == a.internalProjectID {
		level = slog.LevelDebug
	}

	a.logger.Log(ctx, level, "failed to parse event post",
		slog.String("file_path", info.FilePath),
		slog.String("project_id", info.ProjectID),
		slog.Int("api_version", info.APIVersion),
		slog.String("user_agent", info.UserAgent),
		slog.Any("error", err),
	)
}

// normalizeEvent enforces the pipeline entry invariant: CreatedUtc and
// ProjectID come from the post, a client-supplied ID is preserved in
// ReferenceID, and ID, StackID and OrganizationID are cleared because they
// are assigned downstream, never by the client.
func normalizeEvent(event *domain.ParsedEvent, projectID string, createdUtc time.Time) {
	event.Date = createdUtc
	event.ProjectID = projectID

	if event.ID != "" && event.ReferenceID == "" {
		event.ReferenceID = event.ID
	}

	event.ID = ""
	event.StackID = ""
	event.OrganizationID = ""
}

// decodeText converts payload bytes to a string using the declared character
// set, falling back to UTF-8 when the declaration is absent.
func decodeText(payload []byte, charSet string) (string, error) {
	name := strings.TrimSpace(strings.ToLower(charSet))
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(payload), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", err
	}

	decoded, err := enc.NewDecoder().Bytes(payload)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
