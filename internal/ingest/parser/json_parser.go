package parser

import (
	"strings"

	json "github.com/goccy/go-json"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// JSONParser parses the platform's canonical JSON wire format: either a
// single event object or an array of event objects.
type JSONParser struct{}

// NewJSONParser creates the default JSON event parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Parse decodes text into events. Empty input yields zero events; malformed
// input is a Validation-class error.
func (p *JSONParser) Parse(text string) ([]*domain.ParsedEvent, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var events []*domain.ParsedEvent
		if err := json.Unmarshal([]byte(trimmed), &events); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed event batch: "+err.Error())
		}
		return compact(events), nil
	}

	var event domain.ParsedEvent
	if err := json.Unmarshal([]byte(trimmed), &event); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed event: "+err.Error())
	}
	return []*domain.ParsedEvent{&event}, nil
}

// compact drops null entries a client may have sent inside an array.
func compact(events []*domain.ParsedEvent) []*domain.ParsedEvent {
	out := events[:0]
	for _, event := range events {
		if event != nil {
			out = append(out, event)
		}
	}
	return out
}
