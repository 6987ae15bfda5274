package validation

import (
	"fmt"
	"regexp"

	dErrors "custodian/pkg/domain-errors"
)

// MaxBodySize caps admin API request bodies at 256 KB.
const MaxBodySize = 256 * 1024

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
	MaxSubjectIDLength   = 256
	MaxReasonLength      = 2000
	MaxOperationLength   = 200
	// MaxRectifications bounds the records touched by one rectification request.
	MaxRectifications = 500
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// IsIdentifier reports whether name is safe to splice into SQL as a table or
// column name after quoting.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
