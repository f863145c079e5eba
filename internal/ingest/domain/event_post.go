// Package domain defines the core domain models for event-post ingestion.
// An event post is a raw, possibly batched and possibly compressed client
// submission; the queue carries a small metadata envelope while the payload
// itself lives in blob storage under FilePath.
package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/eventpost/internal/validation"
)

// ContentEncodingGzip is the encoding token for gzip-compressed post bodies.
const ContentEncodingGzip = "gzip"

// EventPostInfo holds the metadata and payload for one submitted event post.
type EventPostInfo struct {
	// FilePath is the opaque blob locator, unique per post, and the
	// activation lock key.
	FilePath string `json:"file_path"`
	// ProjectID is the project the post was submitted to.
	ProjectID string `json:"project_id"`
	// APIVersion is the client API version the post was submitted against.
	APIVersion int `json:"api_version"`
	// UserAgent identifies the submitting client SDK.
	UserAgent string `json:"user_agent"`
	// IPAddress is the submitting client's address.
	IPAddress string `json:"ip_address"`
	// CharSet is the declared character set of the payload (UTF-8 if empty).
	CharSet string `json:"char_set"`
	// ContentEncoding is the compression token ("gzip") or empty for plain bodies.
	ContentEncoding string `json:"content_encoding"`
	// MediaType is the declared media type of the payload.
	MediaType string `json:"media_type"`
	// Data is the raw payload, possibly compressed. It is populated from blob
	// storage when the post is processed and is never carried on the queue.
	Data []byte `json:"-"`
	// ShouldArchive indicates whether successful posts are retained after completion.
	ShouldArchive bool `json:"should_archive"`
}

// Validate checks that the post carries the fields required for processing.
func (e *EventPostInfo) Validate() error {
	return appvalidation.WrapValidationError(validation.ValidateStruct(e,
		validation.Field(&e.FilePath, validation.Required),
		validation.Field(&e.ProjectID, validation.Required),
		validation.Field(&e.APIVersion, validation.Min(1)),
		validation.Field(&e.ContentEncoding, appvalidation.ContentEncoding{}),
		validation.Field(&e.CharSet, appvalidation.CharSet{}),
	))
}

// QueueEntryStatus tracks the lease lifecycle of a queue entry.
type QueueEntryStatus int

const (
	// StatusDequeued marks an entry freshly pulled from the queue.
	StatusDequeued QueueEntryStatus = iota
	// StatusActive marks an entry whose blob activation succeeded.
	StatusActive
	// StatusCompleted marks a permanently acknowledged entry.
	StatusCompleted
	// StatusAbandoned marks a released entry, eligible for redelivery.
	StatusAbandoned
)

// String returns the status name for logging.
func (s QueueEntryStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "dequeued"
	}
}

// JobDisposition names how a processing job resolved one queue entry.
type JobDisposition string

const (
	// DispositionProcessed means events went through the pipeline and the
	// entry was completed.
	DispositionProcessed JobDisposition = "processed"
	// DispositionEmpty means parsing produced no events; the entry was
	// completed without pipeline work.
	DispositionEmpty JobDisposition = "empty"
	// DispositionInvalid means the entry envelope failed validation and
	// was completed to keep it off the queue.
	DispositionInvalid JobDisposition = "invalid"
	// DispositionDiscarded means the payload was rejected (oversized or
	// undecodable) and the entry was completed.
	DispositionDiscarded JobDisposition = "discarded"
	// DispositionMissingPayload means the blob body could not be loaded
	// and the entry was abandoned for redelivery.
	DispositionMissingPayload JobDisposition = "missing_payload"
	// DispositionRejected means the pipeline rejected the whole batch for
	// a permanent reason and the entry was completed.
	DispositionRejected JobDisposition = "rejected"
	// DispositionSplitRetry means failed events of a multi-event post were
	// re-enqueued individually and the original entry was completed.
	DispositionSplitRetry JobDisposition = "split_retry"
	// DispositionErrored means processing failed transiently and the entry
	// was abandoned for redelivery.
	DispositionErrored JobDisposition = "errored"
	// DispositionCancelled means shutdown interrupted processing and the
	// entry was abandoned.
	DispositionCancelled JobDisposition = "cancelled"
)

// QueueEntry is a lease over one EventPostInfo reference. Exactly one worker
// may hold an active lease for a given entry at a time; exclusivity is
// enforced by the queue transport's lease mechanism, not by this type.
type QueueEntry struct {
	// ID is the queue-assigned entry identifier.
	ID string
	// Value is the post metadata envelope carried by the entry.
	Value *EventPostInfo
	// Attempts is the delivery count reported by the transport, when available.
	Attempts int
	// Status is the current lease state.
	Status QueueEntryStatus
	// Receipt is the transport's opaque acknowledgement handle.
	Receipt any
	// EnqueuedAt is when the entry was first enqueued, when reported.
	EnqueuedAt time.Time
}
