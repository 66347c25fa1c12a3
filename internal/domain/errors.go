package domain

import (
	"errors"
	"fmt"
)

// ErrValidation marks input the service refuses before calling anything remote.
var ErrValidation = errors.New("validation failed")

// APIError is a non-2xx answer from one of the external REST APIs.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Service, e.StatusCode, e.Body)
}

// ArchiveError reports a failure after the archive page was already created,
// leaving it partially populated.
type ArchiveError struct {
	Archived Archived
	Err      error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive page %s: %v", e.Archived.PageID, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
