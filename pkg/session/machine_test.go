package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/consult/pkg/interview"
	"github.com/fyrsmithlabs/consult/pkg/nlu"
	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

type fakeNarrower struct {
	resp nlu.HourResponse
	err  error
	seen nlu.HourRequest
}

func (f *fakeNarrower) ExtractFields(ctx context.Context, req nlu.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (f *fakeNarrower) NarrowHours(ctx context.Context, req nlu.HourRequest) (nlu.HourResponse, error) {
	f.seen = req
	return f.resp, f.err
}

func (f *fakeNarrower) Available() bool { return true }

func newTestMachine(t *testing.T, collab nlu.Collaborator) *Machine {
	t.Helper()
	catalog := interview.DefaultCatalog()
	engine, err := interview.NewEngine(catalog)
	require.NoError(t, err)
	m, err := NewMachine(nil, engine, interview.NewTracker(catalog), collab, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestNewMachine_RequiresEngineAndTracker(t *testing.T) {
	catalog := interview.DefaultCatalog()
	engine, err := interview.NewEngine(catalog)
	require.NoError(t, err)

	_, err = NewMachine(nil, nil, interview.NewTracker(catalog), nil, nil)
	assert.Error(t, err)

	_, err = NewMachine(nil, engine, nil, nil, nil)
	assert.Error(t, err)
}

func TestAdvance_InitHasNoGate(t *testing.T) {
	m := newTestMachine(t, nil)

	res, err := m.Advance(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, StageInit, res.Stage)
	assert.Equal(t, StageIcebreak, res.NextStage)
	assert.Equal(t, interview.StatusSkipped, res.Outcome.Status)
}

func TestAdvance_IcebreakGateHoldsUntilComplete(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Context().Stage = StageIcebreak

	res, err := m.Advance(context.Background(), "I want to ask about my career")
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.Equal(t, StageIcebreak, res.NextStage)
	assert.Contains(t, res.Progress.Missing, "three numbers between 1 and 9")

	res, err = m.Advance(context.Background(), "my numbers are 7, 3 and 5")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, StageDeepen, res.NextStage)
	assert.Equal(t, "career", m.Context().Category)
	assert.Equal(t, []int{7, 3, 5}, m.Context().Seeds)
}

func TestAdvance_CollectPausesForTimeSupplement(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Context().Stage = StageCollect

	res, err := m.Advance(context.Background(), "I was born 1990-05-15, I don't remember the time, I'm male")
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.True(t, res.AwaitingTimeEvent)
	assert.Equal(t, StageCollect, res.NextStage)
	assert.True(t, m.Context().NeedsTimeSupplement)
	assert.Equal(t, 1990, m.Context().BirthYear)
	assert.Equal(t, 5, m.Context().BirthMonth)
	assert.Equal(t, 15, m.Context().BirthDay)
	assert.Equal(t, "male", m.Context().Gender)

	res, err = m.Advance(context.Background(), "my mother was working the night shift when I was born")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, StageVerify, res.NextStage)

	tc := m.Context().Time
	assert.Equal(t, temporal.StatusKnownRange, tc.Status)
	assert.Equal(t, []int{21, 22, 23, 0}, tc.Candidates)
	assert.Equal(t, []string{"my mother was working the night shift when I was born"}, m.Context().Events)
}

func TestAdvance_ExactTimeSkipsSupplement(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Context().Stage = StageCollect

	res, err := m.Advance(context.Background(), "born 1990-05-15 at 14:30, female")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, StageVerify, res.NextStage)
	assert.False(t, m.Context().NeedsTimeSupplement)

	tc := m.Context().Time
	assert.Equal(t, temporal.StatusCertain, tc.Status)
	require.NotNil(t, tc.Hour)
	assert.Equal(t, 14, *tc.Hour)
}

func TestAdvance_SupplementAskedAtMostOnce(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Context().Stage = StageCollect

	_, err := m.Advance(context.Background(), "1990-05-15, no idea about the time, male")
	require.NoError(t, err)

	// An answer that matches no hint still moves the conversation on.
	res, err := m.Advance(context.Background(), "nothing special comes to mind")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, StageVerify, res.NextStage)
	assert.Equal(t, temporal.StatusUnknown, m.Context().Time.Status)
}

func TestAdvance_NLUNarrowsBeforeKeywordTable(t *testing.T) {
	best := 22
	collab := &fakeNarrower{resp: nlu.HourResponse{
		Hours:      []int{21, 22},
		BestHour:   &best,
		Confidence: nlu.ConfidenceHigh,
	}}
	m := newTestMachine(t, collab)
	m.Context().Stage = StageCollect

	_, err := m.Advance(context.Background(), "1990-05-15, don't know the time, male")
	require.NoError(t, err)

	res, err := m.Advance(context.Background(), "mother says it was late in the evening")
	require.NoError(t, err)
	assert.True(t, res.Advanced)

	tc := m.Context().Time
	assert.Equal(t, temporal.StatusUncertain, tc.Status)
	assert.Equal(t, []int{21, 22}, tc.Candidates)
	require.NotNil(t, tc.Hour)
	assert.Equal(t, 22, *tc.Hour)
	assert.InDelta(t, 0.7, tc.Confidence, 1e-9)
	assert.Equal(t, "mother says it was late in the evening", collab.seen.Event)
	assert.Len(t, collab.seen.Candidates, 24)
}

func TestAdvance_NLUFailureFallsBackToKeywords(t *testing.T) {
	collab := &fakeNarrower{err: assert.AnError}
	m := newTestMachine(t, collab)
	m.Context().Stage = StageCollect

	_, err := m.Advance(context.Background(), "1990-05-15, not sure about the time, male")
	require.NoError(t, err)

	_, err = m.Advance(context.Background(), "she was on the night shift")
	require.NoError(t, err)

	tc := m.Context().Time
	assert.Equal(t, temporal.StatusKnownRange, tc.Status)
	assert.Equal(t, []int{21, 22, 23, 0}, tc.Candidates)
}

func TestAdvance_VerifyFeedbackAdjusts(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Context().Stage = StageVerify

	res, err := m.Advance(context.Background(), "yes, that was accurate")
	require.NoError(t, err)
	assert.True(t, res.Advanced)
	assert.Equal(t, StageReport, res.NextStage)
	assert.InDelta(t, 0.1, m.Context().Adjustments["retrospective"], 1e-9)
}

func TestAdvance_FollowUpIsTerminalUntilComplete(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Context().Stage = StageFollowUp

	res, err := m.Advance(context.Background(), "one more question")
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.Equal(t, StageFollowUp, res.NextStage)

	m.Complete()
	res, err = m.Advance(context.Background(), "hello?")
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, res.NextStage)
	assert.Equal(t, interview.StatusSkipped, res.Outcome.Status)
}

func TestAdvance_FullConversation(t *testing.T) {
	m := newTestMachine(t, nil)
	ctx := context.Background()

	turns := []struct {
		input string
		next  Stage
	}{
		{"hi there", StageIcebreak},
		{"I want to ask about my career, thinking about changing jobs, my numbers are 7, 3 and 5", StageDeepen},
		{"it has been on my mind since spring", StageCollect},
		{"I was born 1990-05-15, I don't remember the time, I'm male", StageCollect},
		{"my mother was working the night shift", StageVerify},
		{"yes, spot on", StageReport},
		{"go ahead", StageFollowUp},
	}
	for _, turn := range turns {
		res, err := m.Advance(ctx, turn.input)
		require.NoError(t, err)
		assert.Equal(t, turn.next, res.NextStage, turn.input)
	}

	c := m.Context()
	assert.Equal(t, "career", c.Category)
	assert.Equal(t, []int{7, 3, 5}, c.Seeds)
	assert.Equal(t, 1990, c.BirthYear)
	assert.Equal(t, temporal.StatusKnownRange, c.Time.Status)
	assert.InDelta(t, 0.1, c.Adjustments["retrospective"], 1e-9)
}

func TestBirthBundle(t *testing.T) {
	m := newTestMachine(t, nil)

	_, err := m.BirthBundle()
	assert.Error(t, err)

	c := m.Context()
	c.BirthYear, c.BirthMonth, c.BirthDay = 1990, 5, 15
	c.Gender = "male"
	c.Time = temporal.Certainty{
		Status:     temporal.StatusKnownRange,
		Candidates: []int{21, 22, 23, 0},
		Confidence: 0.4,
	}

	b, err := m.BirthBundle()
	require.NoError(t, err)
	assert.Nil(t, b.Hour)
	require.NotEmpty(t, b.Candidates)

	var sum float64
	for _, cand := range b.Candidates {
		sum += cand.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestBirthBundle_TrueSolarCorrection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrueSolarTime = true
	cfg.LongitudeEast = 105.0

	catalog := interview.DefaultCatalog()
	engine, err := interview.NewEngine(catalog)
	require.NoError(t, err)
	m, err := NewMachine(cfg, engine, interview.NewTracker(catalog), nil, zap.NewNop())
	require.NoError(t, err)

	c := m.Context()
	c.BirthYear, c.BirthMonth, c.BirthDay = 1990, 4, 15
	minute := 30
	c.Time = temporal.Exact(12)
	c.Time.Minute = &minute

	// 105 degrees east is a full hour behind the reference meridian.
	b, err := m.BirthBundle()
	require.NoError(t, err)
	require.NotNil(t, b.Hour)
	assert.Equal(t, 11, *b.Hour)
}

func TestReset_KeepsID(t *testing.T) {
	m := newTestMachine(t, nil)
	id := m.Context().ID
	m.Context().Stage = StageReport
	m.Context().Category = "career"

	m.Reset()
	assert.Equal(t, id, m.Context().ID)
	assert.Equal(t, StageInit, m.Context().Stage)
	assert.Empty(t, m.Context().Category)
}

func TestRestore_NormalizesContext(t *testing.T) {
	m := newTestMachine(t, nil)

	err := m.Restore(&Context{ID: "abc", Stage: Stage(42)})
	require.NoError(t, err)
	assert.Equal(t, StageInit, m.Context().Stage)
	assert.Equal(t, temporal.StatusUnknown, m.Context().Time.Status)
	assert.NotNil(t, m.Context().Fields)

	err = m.Restore(nil)
	assert.Error(t, err)
}
