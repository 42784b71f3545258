package features

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTargetDigit is returned when a source name does not carry a
	// digit at the label offset.
	ErrNoTargetDigit = errors.New("no target digit at label offset")

	// ErrMissingBucketFallback is returned when a bucket is missing in a
	// run and no other run from the same file observed it, leaving nothing
	// to impute from.
	ErrMissingBucketFallback = errors.New("bucket missing in every run, cannot impute")
)

// MalformedInputError marks a source file that cannot contribute to the
// dataset: its name lacks a label or its contents are not a raw log.
type MalformedInputError struct {
	Source string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %q: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }
