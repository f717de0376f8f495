// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Stage failure taxonomy. Every failure carries a human-readable reason;
// a stage either reports completed-with-usable-data or one of these.
// Per prd001-pipeline R4.

// MissingDependencyError indicates a stage was invoked before the stage it
// depends on produced a non-empty structured output. The stage performs no
// work and the entry is unmodified.
type MissingDependencyError struct {
	// Stage is the stage that refused to run.
	Stage Stage

	// Requires is the absent upstream stage.
	Requires Stage
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("stage %s requires structured output from stage %s, which is absent or empty", e.Stage, e.Requires)
}

// GenerationTimeoutError indicates a generation call exceeded its deadline
// and was aborted. No partial result is written.
type GenerationTimeoutError struct {
	// Elapsed is the configured deadline that was exceeded.
	Elapsed time.Duration
}

func (e *GenerationTimeoutError) Error() string {
	return fmt.Sprintf("generation call exceeded %s deadline and was aborted", e.Elapsed)
}

// GenerationRejectedError indicates the generation service returned a
// failure status. Message carries the service's own message verbatim when
// one was present.
type GenerationRejectedError struct {
	Message string
}

func (e *GenerationRejectedError) Error() string {
	if e.Message == "" {
		return "generation service rejected the request"
	}
	return "generation service rejected the request: " + e.Message
}

// EmptyOutputError indicates a call succeeded but yielded no extractable
// text, including the case where the output-length cap was hit before any
// text was produced.
type EmptyOutputError struct{}

func (e *EmptyOutputError) Error() string {
	return "generation returned no extractable text"
}

// MalformedStructuredError indicates the cleanup text could not be repaired
// into valid JSON. The raw text is retained on the entry; the structured
// output stays unset.
type MalformedStructuredError struct {
	Stage Stage
	Err   error
}

func (e *MalformedStructuredError) Error() string {
	return fmt.Sprintf("stage %s: cleanup output is not repairable JSON: %v", e.Stage, e.Err)
}

func (e *MalformedStructuredError) Unwrap() error { return e.Err }

// SchemaViolationError indicates parsed JSON was missing required keys or
// produced no usable records. Nothing is persisted.
type SchemaViolationError struct {
	Stage  Stage
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("stage %s: structured output violates schema: %s", e.Stage, e.Reason)
}
