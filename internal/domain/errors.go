package domain

import "errors"

// Sentinel errors shared across the pipeline. Adapters wrap these with
// context; callers branch with errors.Is.
var (
	// ErrNotFound is returned when an update targets an unknown event id.
	ErrNotFound = errors.New("event not found")

	// ErrDuplicateID is returned when an id collides with an existing record.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrTransport covers remote load and upload failures.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidSubmission is returned when a submission fails extraction or
	// normalization; the accumulated messages travel alongside it.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrValidation is returned when a record set fails blocking validation.
	ErrValidation = errors.New("validation failed")
)
