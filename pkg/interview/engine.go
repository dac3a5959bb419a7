package interview

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/consult/pkg/nlu"
)

// DefaultFallbackTimeout bounds the NLU escalation round trip.
const DefaultFallbackTimeout = 20 * time.Second

// extractionTask identifies field-extraction requests to the
// collaborator.
const extractionTask = "interview_field_extraction"

// Engine runs the dual-path validation: deterministic extractors
// first, NLU escalation only on an incomplete pass. The engine is
// stateless; callers merge extracted fields into their session map.
type Engine struct {
	catalog         *Catalog
	collab          nlu.Collaborator
	logger          *zap.Logger
	fallbackTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCollaborator wires the optional NLU fallback.
func WithCollaborator(c nlu.Collaborator) EngineOption {
	return func(e *Engine) { e.collab = c }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithFallbackTimeout overrides the NLU call timeout.
func WithFallbackTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.fallbackTimeout = d }
}

// NewEngine creates a validation engine over a catalog.
func NewEngine(catalog *Catalog, opts ...EngineOption) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	e := &Engine{
		catalog:         catalog,
		logger:          zap.NewNop(),
		fallbackTimeout: DefaultFallbackTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e, nil
}

// Validate runs the deterministic extraction pass for a stage.
//
// Each requirement's extractor runs in declared order against the raw
// text; non-empty results land in the extracted field map. Required
// fields satisfied neither by extraction nor by previously collected
// state are reported missing with a generated suggestion. Calling
// twice with identical arguments yields identical outcomes.
func (e *Engine) Validate(stage, rawText string, collected map[string]string) Outcome {
	reqs := e.catalog.Requirements(stage)
	if len(reqs) == 0 {
		return Outcome{
			Status: StatusSkipped,
			Fields: map[string]string{},
			Source: SourceDeterministic,
		}
	}

	extracted := make(map[string]string)
	for _, r := range reqs {
		if v := r.Extract(rawText); v != "" {
			extracted[r.Name] = v
		}
	}

	return e.assemble(reqs, extracted, collected, SourceDeterministic)
}

// ValidateWithFallback runs Validate and, when required fields remain
// missing and a collaborator is configured, asks it for one structured
// extraction pass. Collaborator failures of any kind are swallowed:
// the deterministic outcome is returned unchanged, never worse.
func (e *Engine) ValidateWithFallback(ctx context.Context, stage, rawText string, collected map[string]string) Outcome {
	outcome := e.Validate(stage, rawText, collected)
	if outcome.Status == StatusValid || outcome.Status == StatusSkipped {
		return outcome
	}
	if e.collab == nil || !e.collab.Available() {
		return outcome
	}

	reqs := e.catalog.Requirements(stage)
	req := nlu.Request{
		Task:   extractionTask,
		Fields: make([]nlu.FieldSpec, 0, len(reqs)),
		Input:  rawText,
	}
	for _, r := range reqs {
		req.Fields = append(req.Fields, nlu.FieldSpec{
			Name:        r.Name,
			Description: r.Description,
			Level:       string(r.Level),
			Example:     r.Example,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, e.fallbackTimeout)
	defer cancel()

	fields, err := e.collab.ExtractFields(callCtx, req)
	if err != nil {
		e.logger.Debug("nlu fallback unavailable",
			zap.String("stage", stage),
			zap.Error(err))
		return outcome
	}

	known := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		known[r.Name] = true
	}

	// Merge: deterministic results win on conflict. Parse-then-merge is
	// all-or-nothing, so a failure above never leaves a partial map.
	merged := make(map[string]string, len(outcome.Fields)+len(fields))
	for k, v := range fields {
		if known[k] && v != "" {
			merged[k] = v
		}
	}
	for k, v := range outcome.Fields {
		merged[k] = v
	}

	escalated := e.assemble(reqs, merged, collected, SourceEscalated)
	e.logger.Debug("nlu fallback merged",
		zap.String("stage", stage),
		zap.Int("nlu_fields", len(fields)),
		zap.String("status", string(escalated.Status)))
	return escalated
}

// assemble computes missing fields, suggestions, and the outcome
// status from an extracted map.
func (e *Engine) assemble(reqs []Requirement, extracted, collected map[string]string, source Source) Outcome {
	var missing []string
	var suggestions []string
	for _, r := range reqs {
		if r.Level != Required {
			continue
		}
		if extracted[r.Name] != "" || collected[r.Name] != "" {
			continue
		}
		missing = append(missing, r.Name)
		suggestions = append(suggestions, r.Suggestion())
	}

	out := Outcome{
		Fields:      extracted,
		Missing:     missing,
		Suggestions: suggestions,
		Source:      source,
	}
	switch {
	case len(missing) == 0:
		out.Status = StatusValid
	case len(extracted) > 0:
		out.Status = StatusIncomplete
		out.Message = "thanks, a few details are still missing"
		out.Retryable = true
	default:
		out.Status = StatusInvalid
		out.Message = "couldn't find what I need in that"
		out.Retryable = true
	}
	return out
}
