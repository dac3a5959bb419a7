// Package interview implements the stage requirement catalog, the
// dual-path validation engine, and the progress tracker for the
// consultation interview. Deterministic pattern extraction always runs
// first; the NLU collaborator is consulted only when the deterministic
// pass leaves required fields missing, and its failures never make a
// result worse.
package interview

import (
	"fmt"
)

// Level classifies how strongly a stage needs a field.
type Level string

const (
	// Required fields gate stage advancement.
	Required Level = "required"
	// Recommended fields improve downstream quality but never block.
	Recommended Level = "recommended"
	// Optional fields are nice to have.
	Optional Level = "optional"
)

// Status is the result classification of a validation pass.
type Status string

const (
	// StatusValid means every required field is collected.
	StatusValid Status = "valid"
	// StatusInvalid means nothing usable was extracted and required
	// fields remain missing.
	StatusInvalid Status = "invalid"
	// StatusIncomplete means something was extracted but required
	// fields remain missing.
	StatusIncomplete Status = "incomplete"
	// StatusSkipped means the stage has no requirements to validate.
	StatusSkipped Status = "skipped"
	// StatusRetryNeeded means a transient condition prevented
	// validation; the caller may retry the same input.
	StatusRetryNeeded Status = "retry_needed"
)

// Source tags which path produced an outcome, so callers can
// distinguish provenance without string inspection.
type Source string

const (
	// SourceDeterministic marks a pure pattern-extraction outcome.
	SourceDeterministic Source = "deterministic"
	// SourceEscalated marks an outcome merged with NLU results.
	SourceEscalated Source = "escalated"
)

// Extractor is a deterministic, pure pattern/keyword function. It
// returns the extracted value, or "" for a miss. A miss is an absence,
// not an error.
type Extractor func(text string) string

// Requirement is one immutable catalog entry. Per-session collected
// state is tracked separately in the session field map.
type Requirement struct {
	Name        string
	Description string
	Level       Level
	Extract     Extractor
	Example     string
	Hint        string
}

// Suggestion renders the guidance text shown when the field is missing.
func (r Requirement) Suggestion() string {
	return fmt.Sprintf("%s (example: %s)", r.Hint, r.Example)
}

// Outcome is the result of one validation pass. It is fresh per call
// and never mutated after return.
type Outcome struct {
	Status      Status            `json:"status"`
	Message     string            `json:"message,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Missing     []string          `json:"missing,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Retryable   bool              `json:"retryable"`
	Source      Source            `json:"source"`
}

// Progress is the derived completion state of a stage. It is always
// recomputed, never cached.
type Progress struct {
	RequiredTotal     int               `json:"required_total"`
	RequiredCollected int               `json:"required_collected"`
	OptionalTotal     int               `json:"optional_total"`
	OptionalCollected int               `json:"optional_collected"`
	Missing           []string          `json:"missing,omitempty"`
	Collected         map[string]string `json:"collected,omitempty"`
	Complete          bool              `json:"complete"`
	CanProceed        bool              `json:"can_proceed"`
	Percent           float64           `json:"percent"`
}
