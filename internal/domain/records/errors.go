package records

import "errors"

var (
	// ErrInvalidInput marks a request rejected before entering the pipeline.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates no record exists for the owner and id.
	ErrNotFound = errors.New("record not found")
	// ErrPersistence is the only ingestion failure surfaced to callers.
	ErrPersistence = errors.New("record persistence failed")

	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrExtractionFailed   = errors.New("text extraction failed")
)
