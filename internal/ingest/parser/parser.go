// Package parser turns decoded event-post text into normalized domain events.
//
// Parsers are pluggable: a registry maps matcher predicates over the post's
// API version and user agent to parser implementations, so new client wire
// formats register a matcher and parser pair without touching the job
// orchestrator.
package parser

import (
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// EventParser parses one post body into zero or more events.
type EventParser interface {
	Parse(text string) ([]*domain.ParsedEvent, error)
}

// Matcher decides whether a parser handles posts submitted with the given
// API version and user agent.
type Matcher func(apiVersion int, userAgent string) bool

// registration pairs a matcher with its parser.
type registration struct {
	match  Matcher
	parser EventParser
}

// Registry resolves the parser for a post. Registrations are checked in
// order; the first match wins.
type Registry struct {
	registrations []registration
	fallback      EventParser
}

// NewRegistry creates a registry with the default JSON parser as fallback.
func NewRegistry() *Registry {
	return &Registry{
		fallback: NewJSONParser(),
	}
}

// Register adds a matcher and parser pair. Later registrations are only
// consulted when every earlier matcher declined.
func (r *Registry) Register(match Matcher, parser EventParser) {
	r.registrations = append(r.registrations, registration{match: match, parser: parser})
}

// Resolve returns the parser for the given post attributes, falling back to
// the default JSON parser when no registration matches.
func (r *Registry) Resolve(apiVersion int, userAgent string) EventParser {
	for _, reg := range r.registrations {
		if reg.match(apiVersion, userAgent) {
			return reg.parser
		}
	}
	return r.fallback
}
