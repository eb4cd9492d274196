package errors

import (
	"regexp"

	"github.com/google/uuid"
)

// identifierRegex matches names that are usable as bare identifiers inside
// dataflow expressions.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidateIdentifier checks that name can be referenced from an expression
// without quoting. Selection names become signal name prefixes, so they must
// pass this check before any signal is synthesized from them.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return New(ErrCodeMissingField, "%s requires %q", kind, "name")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidSpec, "%s name too long (max 256 characters)", kind)
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidSpec, "%s name %q is not a valid identifier", kind, name)
	}
	return nil
}

// ValidateGraphID validates the id of a stored compile result.
func ValidateGraphID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "graph id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid graph id %q", id)
	}
	return nil
}
