package service

import "fmt"

// ValidationError means the submission is missing its text or its user identifier.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing %s", e.Field)
}

// ExtractionError means the model call failed or ran out of time.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// WriteFailure is a persistence error that did not abort the pipeline.
type WriteFailure struct {
	Entity string
	Err    error
}
