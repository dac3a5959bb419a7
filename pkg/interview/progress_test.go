package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_EmptyStageAlwaysProceeds(t *testing.T) {
	tr := NewTracker(DefaultCatalog())

	for _, stage := range []string{StageInit, StageReport, StageFollowUp, "unknown"} {
		p := tr.Progress(stage, nil)
		assert.True(t, p.CanProceed, "stage %s", stage)
		assert.InDelta(t, 100.0, p.Percent, 1e-9)
	}
}

func TestProgress_CollectGate(t *testing.T) {
	tr := NewTracker(DefaultCatalog())

	p := tr.Progress(StageCollect, map[string]string{
		"birth_year":  "1990",
		"birth_month": "5",
	})

	assert.Equal(t, 3, p.RequiredTotal)
	assert.Equal(t, 2, p.RequiredCollected)
	assert.False(t, p.CanProceed)
	assert.False(t, p.Complete)
	assert.Len(t, p.Missing, 1)
	assert.InDelta(t, 100.0*2/3, p.Percent, 1e-9)
}

func TestProgress_OptionalGapsNeverBlock(t *testing.T) {
	tr := NewTracker(DefaultCatalog())

	p := tr.Progress(StageCollect, map[string]string{
		"birth_year":  "1990",
		"birth_month": "5",
		"birth_day":   "15",
	})

	assert.True(t, p.CanProceed)
	assert.False(t, p.Complete) // recommended/optional fields still open
	assert.Zero(t, p.OptionalCollected)
	assert.Equal(t, 4, p.OptionalTotal)
}

func TestProgress_AlwaysRecomputed(t *testing.T) {
	tr := NewTracker(DefaultCatalog())
	collected := map[string]string{"birth_year": "1990"}

	first := tr.Progress(StageCollect, collected)
	collected["birth_month"] = "5"
	second := tr.Progress(StageCollect, collected)

	assert.Equal(t, 1, first.RequiredCollected)
	assert.Equal(t, 2, second.RequiredCollected)
}

func TestProgress_SnapshotOnlyCopiesKnownFields(t *testing.T) {
	tr := NewTracker(DefaultCatalog())

	p := tr.Progress(StageVerify, map[string]string{
		"feedback": "accurate",
		"stray":    "not in catalog",
	})

	assert.Equal(t, map[string]string{"feedback": "accurate"}, p.Collected)
	assert.True(t, p.CanProceed)
}
