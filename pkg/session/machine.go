package session

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/consult/pkg/interview"
	"github.com/fyrsmithlabs/consult/pkg/nlu"
	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

const instrumentationName = "github.com/fyrsmithlabs/consult/pkg/session"

// DefaultNarrowTimeout bounds the NLU call made while narrowing the
// birth time from a retrospective event.
const DefaultNarrowTimeout = 20 * time.Second

// Config carries machine-level policy.
type Config struct {
	// HistoryCap bounds stored conversation history per session.
	HistoryCap int
	// MaxCandidates caps the hour-candidate list handed downstream.
	MaxCandidates int
	// TrueSolarTime enables the longitude and equation-of-time
	// correction when an exact birth hour is known.
	TrueSolarTime bool
	// LongitudeEast is the birth longitude in degrees east, used only
	// when TrueSolarTime is set.
	LongitudeEast float64
	// EventHints is the keyword table for deterministic birth-time
	// narrowing. Empty means the built-in table.
	EventHints []temporal.EventHint
	// NarrowTimeout bounds the NLU narrowing call.
	NarrowTimeout time.Duration
}

// DefaultConfig returns the stock machine policy.
func DefaultConfig() *Config {
	return &Config{
		HistoryCap:    DefaultHistoryCap,
		MaxCandidates: temporal.DefaultMaxCandidates,
		LongitudeEast: temporal.ReferenceLongitude,
		NarrowTimeout: DefaultNarrowTimeout,
	}
}

// StepResult reports what one Advance call did.
type StepResult struct {
	// Stage is the stage that processed the input.
	Stage Stage
	// NextStage is the stage after the call.
	NextStage Stage
	// Advanced reports whether the gate was cleared.
	Advanced bool
	// Outcome is the validation outcome for the processed input.
	Outcome interview.Outcome
	// Progress describes the processed stage's gate after merging.
	Progress interview.Progress
	// AwaitingTimeEvent marks that the machine paused to ask the
	// birth-time narrowing question; the next input answers it.
	AwaitingTimeEvent bool
}

// Machine drives one session context through the stage flow. It is
// not safe for concurrent use; callers serialize per session.
type Machine struct {
	cfg     *Config
	engine  *interview.Engine
	tracker *interview.Tracker
	collab  nlu.Collaborator
	logger  *zap.Logger

	tracer         trace.Tracer
	meter          metric.Meter
	advanceCounter metric.Int64Counter
	narrowCounter  metric.Int64Counter

	sctx *Context
}

// NewMachine builds a machine over a fresh session context. The
// engine and tracker are required; the collaborator may be nil for
// deterministic-only operation.
func NewMachine(cfg *Config, engine *interview.Engine, tracker *interview.Tracker, collab nlu.Collaborator, logger *zap.Logger) (*Machine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("tracker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Machine{
		cfg:     cfg,
		engine:  engine,
		tracker: tracker,
		collab:  collab,
		logger:  logger,
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
		sctx:    NewContext(),
	}
	if cfg.HistoryCap > 0 {
		m.sctx.HistoryCap = cfg.HistoryCap
	}

	m.initMetrics()

	return m, nil
}

func (m *Machine) initMetrics() {
	var err error

	m.advanceCounter, err = m.meter.Int64Counter(
		"consult.session.advances_total",
		metric.WithDescription("Total number of stage advance attempts"),
		metric.WithUnit("{advance}"),
	)
	if err != nil {
		m.logger.Warn("failed to create advance counter", zap.Error(err))
	}

	m.narrowCounter, err = m.meter.Int64Counter(
		"consult.session.time_narrowings_total",
		metric.WithDescription("Total number of birth-time narrowing attempts"),
		metric.WithUnit("{narrowing}"),
	)
	if err != nil {
		m.logger.Warn("failed to create narrowing counter", zap.Error(err))
	}
}

// Context exposes the session aggregate for inspection and snapshots.
func (m *Machine) Context() *Context {
	return m.sctx
}

// Restore replaces the machine's session context, typically with one
// rebuilt from a snapshot.
func (m *Machine) Restore(sctx *Context) error {
	if sctx == nil {
		return fmt.Errorf("context is required")
	}
	if !sctx.Stage.Valid() {
		sctx.Stage = StageInit
	}
	sctx.Time = sctx.Time.Normalize()
	if sctx.Fields == nil {
		sctx.Fields = make(map[string]string)
	}
	if sctx.Adjustments == nil {
		sctx.Adjustments = make(map[string]float64)
	}
	if sctx.HistoryCap <= 0 {
		sctx.HistoryCap = DefaultHistoryCap
	}
	m.sctx = sctx
	return nil
}

// Reset returns the session to a fresh context, keeping the ID.
func (m *Machine) Reset() {
	id := m.sctx.ID
	m.sctx = NewContext()
	m.sctx.ID = id
	if m.cfg.HistoryCap > 0 {
		m.sctx.HistoryCap = m.cfg.HistoryCap
	}
}

// Advance processes one user turn against the current stage. The gate
// is re-evaluated against all fields accumulated so far, so partial
// answers across turns converge.
func (m *Machine) Advance(ctx context.Context, input string) (*StepResult, error) {
	ctx, span := m.tracer.Start(ctx, "session.advance")
	defer span.End()

	stage := m.sctx.Stage
	span.SetAttributes(
		attribute.String("session_id", m.sctx.ID),
		attribute.String("stage", stage.String()),
	)

	if stage == StageCompleted {
		return &StepResult{
			Stage:     stage,
			NextStage: stage,
			Outcome:   interview.Outcome{Status: interview.StatusSkipped, Message: "session is complete"},
		}, nil
	}

	m.sctx.AppendHistory("user", input)

	if stage == StageCollect && m.sctx.NeedsTimeSupplement {
		return m.answerTimeSupplement(ctx, input)
	}

	outcome := m.engine.ValidateWithFallback(ctx, stage.String(), input, m.sctx.Fields)

	m.sctx.MergeFields(outcome.Fields)
	m.sctx.applyTyped()
	m.applyStageEffects(stage, input, outcome.Fields)

	progress := m.tracker.Progress(stage.String(), m.sctx.Fields)

	result := &StepResult{
		Stage:    stage,
		Outcome:  outcome,
		Progress: progress,
	}

	switch {
	case stage == StageFollowUp:
		// Open-ended until an explicit Complete or Reset.
	case progress.CanProceed:
		if stage == StageCollect && m.timeDegraded() && !m.sctx.TimeSupplemented {
			m.sctx.NeedsTimeSupplement = true
			m.sctx.TimeSupplemented = true
			result.AwaitingTimeEvent = true
			break
		}
		m.sctx.Stage = stage.Next()
		result.Advanced = true
	}
	result.NextStage = m.sctx.Stage

	m.logger.Debug("stage advance",
		zap.String("session_id", m.sctx.ID),
		zap.String("stage", stage.String()),
		zap.String("next_stage", result.NextStage.String()),
		zap.Bool("advanced", result.Advanced),
		zap.String("outcome", string(outcome.Status)))

	if m.advanceCounter != nil {
		m.advanceCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage.String()),
			attribute.Bool("advanced", result.Advanced),
		))
	}

	return result, nil
}

// Complete marks the session finished from the follow-up stage.
func (m *Machine) Complete() {
	m.sctx.Stage = StageCompleted
	m.sctx.UpdatedAt = time.Now().UTC()
}

// applyStageEffects handles the side effects that fall outside plain
// field accumulation.
func (m *Machine) applyStageEffects(stage Stage, input string, fields map[string]string) {
	switch stage {
	case StageCollect:
		if v, ok := fields["birth_time"]; ok && v != "" && v != "unknown" {
			if parsed := temporal.ParseTimeText(input); parsed.Status != temporal.StatusUnknown {
				m.sctx.Time = parsed
			}
		}
	case StageVerify:
		if v, ok := fields["feedback"]; ok {
			switch v {
			case "accurate":
				m.sctx.Adjustments["retrospective"] += 0.1
			case "inaccurate":
				m.sctx.Adjustments["retrospective"] -= 0.1
			}
		}
	}
}

// timeDegraded reports whether the birth time is too coarse for a
// confident downstream reading.
func (m *Machine) timeDegraded() bool {
	switch m.sctx.Time.Status {
	case temporal.StatusUnknown:
		return true
	case temporal.StatusKnownRange:
		return len(m.sctx.Time.Candidates) > 6
	}
	return false
}

// answerTimeSupplement consumes the narrowing question's answer: the
// NLU collaborator interprets the event when available, otherwise the
// deterministic keyword table does.
func (m *Machine) answerTimeSupplement(ctx context.Context, input string) (*StepResult, error) {
	m.sctx.NeedsTimeSupplement = false
	m.sctx.Events = append(m.sctx.Events, input)

	before := m.sctx.Time
	narrowed, source := m.narrowTime(ctx, before, input)
	m.sctx.Time = narrowed

	if m.narrowCounter != nil {
		m.narrowCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", source),
			attribute.Bool("narrowed", len(narrowed.Candidates) < len(before.Candidates) || before.Status == temporal.StatusUnknown),
		))
	}

	m.logger.Debug("birth time narrowed",
		zap.String("session_id", m.sctx.ID),
		zap.String("source", source),
		zap.String("status", string(narrowed.Status)),
		zap.Int("candidates", len(narrowed.Candidates)))

	m.sctx.Stage = StageCollect.Next()
	return &StepResult{
		Stage:     StageCollect,
		NextStage: m.sctx.Stage,
		Advanced:  true,
		Outcome:   interview.Outcome{Status: interview.StatusValid, Source: interview.SourceDeterministic},
		Progress:  m.tracker.Progress(StageCollect.String(), m.sctx.Fields),
	}, nil
}

func (m *Machine) narrowTime(ctx context.Context, current temporal.Certainty, event string) (temporal.Certainty, string) {
	if m.collab != nil && m.collab.Available() {
		timeout := m.cfg.NarrowTimeout
		if timeout <= 0 {
			timeout = DefaultNarrowTimeout
		}
		nctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := m.collab.NarrowHours(nctx, nlu.HourRequest{
			Candidates: current.Candidates,
			Event:      event,
		})
		if err == nil && len(resp.Hours) > 0 {
			conf := 0.55
			if resp.Confidence == nlu.ConfidenceHigh {
				conf = 0.7
			}
			narrowed := temporal.NarrowToSubset(current, resp.Hours, resp.BestHour, conf)
			if narrowed.Status != current.Status || len(narrowed.Candidates) != len(current.Candidates) {
				return narrowed, "nlu"
			}
		}
		if err != nil {
			m.logger.Debug("nlu narrowing failed, using keyword table",
				zap.String("session_id", m.sctx.ID),
				zap.Error(err))
		}
	}
	hints := m.cfg.EventHints
	if len(hints) == 0 {
		hints = temporal.DefaultEventHints()
	}
	return temporal.NarrowByEvent(current, event, hints), "deterministic"
}
