package linkedin

import (
	"errors"
	"fmt"
)

// Validation errors returned before any network activity.
var (
	// ErrNegativeRange is returned when offset or limit is negative.
	ErrNegativeRange = errors.New("offset and limit must be non-negative")

	// ErrQueryLimit is returned when offset+limit exceeds QueryLimit.
	ErrQueryLimit = fmt.Errorf("linkedin serves at most %d results per search", QueryLimit)
)

// ExtractionError reports which expected field was missing or
// unparsable in a response body. Extraction failures are never retried.
type ExtractionError struct {
	Field string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not parse %s", e.Field)
}

func extractionErr(field string) error {
	return &ExtractionError{Field: field}
}
