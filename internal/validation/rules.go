// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"
	"golang.org/x/text/encoding/htmlindex"

	apperrors "github.com/allisson/eventpost/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// ContentEncoding validates that a post's content encoding token is one the
// payload guard can decompress. An empty value means an uncompressed body.
type ContentEncoding struct{}

// Validate checks the content encoding token.
func (ContentEncoding) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_content_encoding", "content encoding must be a string")
	}

	switch strings.ToLower(s) {
	case "", "gzip":
		return nil
	default:
		return validation.NewError(
			"validation_content_encoding",
			"unsupported content encoding: "+s,
		)
	}
}

// CharSet validates that a post's declared character set resolves to a known
// encoding. An empty value means UTF-8.
type CharSet struct{}

// Validate checks the character set name.
func (CharSet) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_char_set", "character set must be a string")
	}
	if s == "" {
		return nil
	}

	if _, err := htmlindex.Get(s); err != nil {
		return validation.NewError("validation_char_set", "unknown character set: "+s)
	}
	return nil
}
