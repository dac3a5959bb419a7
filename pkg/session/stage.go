// Package session owns the conversation state machine: one mutable
// context per consultation session, advanced through ordered stages
// with per-stage completion gates, persisted as a flat key/value
// snapshot with legacy-stage migration on restore.
package session

// Stage is one step of the interview. Transitions are strictly
// forward except the legacy remapping applied on restore.
type Stage int

const (
	// StageInit is the entry stage; it has no gate.
	StageInit Stage = iota
	// StageIcebreak collects the inquiry category, description, and
	// the three numeric seeds.
	StageIcebreak
	// StageDeepen accepts an optional supplement to the description.
	StageDeepen
	// StageCollect gathers birth facts; its gate requires year, month,
	// and day.
	StageCollect
	// StageVerify takes feedback on retrospective predictions; its
	// gate is always satisfied.
	StageVerify
	// StageReport hands off to synthesis and always advances.
	StageReport
	// StageFollowUp is open-ended and terminal until reset.
	StageFollowUp
	// StageCompleted is the final state.
	StageCompleted
)

var stageLabels = [...]string{
	"init", "icebreak", "deepen", "collect",
	"verify", "report", "followup", "completed",
}

// String returns the canonical stage label.
func (s Stage) String() string {
	if s < StageInit || s > StageCompleted {
		return "init"
	}
	return stageLabels[s]
}

// Valid reports whether s is a defined stage.
func (s Stage) Valid() bool {
	return s >= StageInit && s <= StageCompleted
}

// Next returns the following stage. Completed is a fixed point.
func (s Stage) Next() Stage {
	if s >= StageCompleted {
		return StageCompleted
	}
	return s + 1
}

// legacyStages remaps identifiers from earlier schema versions to
// their nearest current equivalent.
var legacyStages = map[string]Stage{
	"welcome":    StageIcebreak,
	"greeting":   StageIcebreak,
	"warmup":     StageIcebreak,
	"explore":    StageDeepen,
	"deep_dive":  StageDeepen,
	"basic_info": StageCollect,
	"birth_info": StageCollect,
	"feedback":   StageVerify,
	"validation": StageVerify,
	"summary":    StageReport,
	"reading":    StageReport,
	"chat":       StageFollowUp,
	"qa":         StageFollowUp,
	"done":       StageCompleted,
	"finished":   StageCompleted,
}

// ParseStage resolves a persisted stage label, applying the legacy
// remap. Unrecognized names default to Init; restore never fails on a
// stage label.
func ParseStage(label string) Stage {
	for i, l := range stageLabels {
		if l == label {
			return Stage(i)
		}
	}
	if s, ok := legacyStages[label]; ok {
		return s
	}
	return StageInit
}
