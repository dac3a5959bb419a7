package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeText_ExactClock(t *testing.T) {
	c := ParseTimeText("I was born at 7:30")

	require.Equal(t, StatusCertain, c.Status)
	require.NotNil(t, c.Hour)
	assert.Equal(t, 7, *c.Hour)
	require.NotNil(t, c.Minute)
	assert.Equal(t, 30, *c.Minute)
	assert.InDelta(t, 0.9, c.Confidence, 1e-9)
}

func TestParseTimeText_UncertainAfternoon(t *testing.T) {
	// Numeric hour wins over the period, with the period resolving am/pm.
	c := ParseTimeText("afternoon, around 3 o'clock")

	require.Equal(t, StatusUncertain, c.Status)
	require.NotNil(t, c.Hour)
	assert.Equal(t, 15, *c.Hour)
	assert.InDelta(t, 0.6, c.Confidence, 1e-9)
	assert.Equal(t, []int{14, 15, 16, 17}, c.Candidates)
}

func TestParseTimeText_MeridiemSuffix(t *testing.T) {
	c := ParseTimeText("around 8 pm I think")

	require.Equal(t, StatusUncertain, c.Status)
	require.NotNil(t, c.Hour)
	assert.Equal(t, 20, *c.Hour)
	assert.Equal(t, []int{18, 19, 20, 21}, c.Candidates)
}

func TestParseTimeText_NamedPeriod(t *testing.T) {
	tests := []struct {
		text  string
		name  string
		hours []int
	}{
		{"sometime in the morning", "morning", []int{8, 9, 10, 11}},
		{"it was evening", "evening", []int{17, 18, 19, 20}},
		{"late night for sure", "late night", []int{23, 0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseTimeText(tt.text)
			require.Equal(t, StatusKnownRange, c.Status)
			assert.Equal(t, tt.name, c.RangeName)
			assert.Equal(t, tt.hours, c.Candidates)
			assert.InDelta(t, 0.5, c.Confidence, 1e-9)
		})
	}
}

func TestParseTimeText_TraditionalBlock(t *testing.T) {
	c := ParseTimeText("my mother said the rat hour")

	require.Equal(t, StatusKnownRange, c.Status)
	assert.Equal(t, "rat hour", c.RangeName)
	assert.Equal(t, []int{23, 0}, c.Candidates)
	require.NotNil(t, c.Hour)
	assert.Equal(t, 0, *c.Hour) // midnight-crossing block maps to 0
	assert.InDelta(t, 0.7, c.Confidence, 1e-9)
}

func TestParseTimeText_BlockOfThe(t *testing.T) {
	c := ParseTimeText("hour of the horse")

	require.Equal(t, StatusKnownRange, c.Status)
	assert.Equal(t, []int{11, 12}, c.Candidates)
	require.NotNil(t, c.Hour)
	assert.Equal(t, 12, *c.Hour)
}

func TestParseTimeText_NoMatch(t *testing.T) {
	for _, text := range []string{"", "no idea honestly", "somewhere in china"} {
		c := ParseTimeText(text)
		assert.Equal(t, StatusUnknown, c.Status, "text %q", text)
		assert.Nil(t, c.Hour)
		assert.Len(t, c.Candidates, 24)
		assert.Zero(t, c.Confidence)
	}
}

func TestAdjacentHours(t *testing.T) {
	assert.Equal(t, []int{14, 15, 16, 17}, AdjacentHours(15))
	assert.Equal(t, []int{14, 15, 16, 17}, AdjacentHours(16))
	// Midnight block wraps cyclically.
	assert.Equal(t, []int{0, 1, 22, 23}, AdjacentHours(0))
	assert.LessOrEqual(t, len(AdjacentHours(9)), 6)
}

func TestBlockOf(t *testing.T) {
	assert.Equal(t, 0, BlockOf(23))
	assert.Equal(t, 0, BlockOf(0))
	assert.Equal(t, 1, BlockOf(1))
	assert.Equal(t, 1, BlockOf(2))
	assert.Equal(t, 8, BlockOf(15))
	assert.Equal(t, 11, BlockOf(22))
}

func TestPeriodHours_MidnightCrossing(t *testing.T) {
	p := Period{Name: "late night", Start: 23, End: 3}
	assert.Equal(t, []int{23, 0, 1, 2}, p.Hours())
}

func TestNormalize_RepairsCorruptRecords(t *testing.T) {
	bad := []Certainty{
		{Status: StatusCertain},                                 // certain without hour
		{Status: StatusKnownRange},                              // empty candidate set
		{Status: StatusKnownRange, Candidates: []int{5, 99}},    // out of range
		{Status: StatusUnknown, Candidates: []int{1, 2}},        // unknown must cover all hours
		{Status: Status("bogus"), Candidates: []int{1, 2, 3}},   // unrecognized status
	}
	for i, c := range bad {
		got := c.Normalize()
		assert.Equal(t, StatusUnknown, got.Status, "case %d", i)
		assert.Len(t, got.Candidates, 24, "case %d", i)
	}

	good := Exact(15)
	assert.Equal(t, good, good.Normalize())
}
