package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// ValidateAccountID validates a connected-account identifier.
func ValidateAccountID(id string) error {
	if len(id) == 0 {
		return errors.New("account ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("account ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("account ID must be valid UTF-8")
	}
	return nil
}

// ValidateContactNumber validates a contact number. Both plain phone numbers
// and transient lid-form identifiers are accepted.
func ValidateContactNumber(number string) error {
	if len(number) == 0 {
		return errors.New("contact number cannot be empty")
	}
	if len(number) > 64 {
		return errors.New("contact number exceeds maximum length")
	}
	if !utf8.ValidString(number) {
		return errors.New("contact number must be valid UTF-8")
	}
	return nil
}

// ValidateAnalysisKind validates an analysis kind path segment.
func ValidateAnalysisKind(kind string) error {
	if !model.ValidKind(model.AnalysisKind(kind)) {
		return errors.New("unknown analysis kind")
	}
	return nil
}
