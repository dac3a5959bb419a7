// Package nlu defines the narrow request/response contract with the
// natural-language-understanding collaborator and provides HTTP-backed
// providers for it. The collaborator is strictly a fallback: every
// failure mode here is soft, and callers keep their deterministic
// result when a call times out or returns garbage.
package nlu

import (
	"context"
)

// FieldSpec describes one requirement the collaborator should try to
// extract from the input text.
type FieldSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Example     string `json:"example"`
}

// Request asks the collaborator to extract structured fields from
// free-text input.
type Request struct {
	Task   string      `json:"task"`
	Fields []FieldSpec `json:"fields"`
	Input  string      `json:"input"`
}

// HourRequest asks the collaborator to narrow a candidate-hour set
// using a described life event.
type HourRequest struct {
	Candidates []int  `json:"candidates"`
	Event      string `json:"event"`
}

// Confidence labels the collaborator may attach to a narrowed set.
const (
	ConfidenceLow  = "low"
	ConfidenceHigh = "high"
)

// HourResponse is the collaborator's narrowed hour set. BestHour and
// Confidence are optional.
type HourResponse struct {
	Hours      []int  `json:"hours"`
	BestHour   *int   `json:"best_hour,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// Collaborator is the outbound NLU contract. Implementations must
// honor ctx cancellation; callers always attach a timeout.
type Collaborator interface {
	// ExtractFields returns field name -> value for whatever the
	// collaborator could recognize. Unknown keys are filtered by the
	// caller.
	ExtractFields(ctx context.Context, req Request) (map[string]string, error)

	// NarrowHours returns a subset of the candidate hours consistent
	// with the event description.
	NarrowHours(ctx context.Context, req HourRequest) (HourResponse, error)

	// Available reports whether the collaborator is configured and
	// worth calling.
	Available() bool
}

// NoOp is a Collaborator that is never available. It stands in when
// extraction is disabled or unconfigured.
type NoOp struct{}

// ExtractFields returns an empty map.
func (NoOp) ExtractFields(ctx context.Context, req Request) (map[string]string, error) {
	return map[string]string{}, nil
}

// NarrowHours returns the candidates unchanged.
func (NoOp) NarrowHours(ctx context.Context, req HourRequest) (HourResponse, error) {
	return HourResponse{Hours: req.Candidates}, nil
}

// Available returns false.
func (NoOp) Available() bool { return false }

var _ Collaborator = NoOp{}
