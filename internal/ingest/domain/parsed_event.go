package domain

import (
	"time"
)

// ParsedEvent is a normalized domain event produced by a parser.
//
// ID, StackID and OrganizationID are always empty when an event enters the
// pipeline; they are assigned downstream. A client-supplied ID is preserved
// in ReferenceID for correlation before being cleared.
type ParsedEvent struct {
	// ID is the platform-assigned event identifier (empty until assigned).
	ID string `json:"id,omitempty"`
	// ReferenceID is the client-supplied correlation identifier.
	ReferenceID string `json:"reference_id,omitempty"`
	// ProjectID is the owning project, always forced to the post's project.
	ProjectID string `json:"project_id"`
	// OrganizationID is the owning organization (empty until resolved).
	OrganizationID string `json:"organization_id,omitempty"`
	// StackID groups the event with similar occurrences (empty until assigned).
	StackID string `json:"stack_id,omitempty"`
	// Type is the event type (e.g., "error", "log", "usage").
	Type string `json:"type,omitempty"`
	// Source identifies where the event originated.
	Source string `json:"source,omitempty"`
	// Message is the human-readable event message.
	Message string `json:"message,omitempty"`
	// Date is the event creation timestamp in UTC.
	Date time.Time `json:"date"`
	// Data carries arbitrary event payload fields produced by the parser.
	Data map[string]any `json:"data,omitempty"`
}

// PipelineOutcome captures the per-event result of one pipeline run.
// Exactly one of processed, cancelled or errored dominates the retry decision.
type PipelineOutcome struct {
	// Event is the originating parsed event.
	Event *ParsedEvent
	// IsProcessed reports whether the pipeline fully processed the event.
	IsProcessed bool
	// IsCancelled reports whether processing was cut short by cancellation;
	// cancelled events are excluded from both success and retry accounting.
	IsCancelled bool
	// Err holds the failure detail, nil on success.
	Err error
	// ErrorMessage is the coarse failure description used in logs.
	ErrorMessage string
}

// HasError reports whether the outcome carries a failure.
func (o *PipelineOutcome) HasError() bool {
	return o.Err != nil || o.ErrorMessage != ""
}
