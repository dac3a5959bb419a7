package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Ordering(t *testing.T) {
	order := []Stage{
		StageInit, StageIcebreak, StageDeepen, StageCollect,
		StageVerify, StageReport, StageFollowUp, StageCompleted,
	}
	for i := 0; i < len(order)-1; i++ {
		assert.Equal(t, order[i+1], order[i].Next())
	}
	assert.Equal(t, StageCompleted, StageCompleted.Next())
}

func TestStage_RoundTrip(t *testing.T) {
	for s := StageInit; s <= StageCompleted; s++ {
		assert.Equal(t, s, ParseStage(s.String()))
	}
}

func TestParseStage_LegacyRemap(t *testing.T) {
	cases := map[string]Stage{
		"welcome":    StageIcebreak,
		"greeting":   StageIcebreak,
		"explore":    StageDeepen,
		"basic_info": StageCollect,
		"birth_info": StageCollect,
		"feedback":   StageVerify,
		"summary":    StageReport,
		"chat":       StageFollowUp,
		"done":       StageCompleted,
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseStage(label), label)
	}
}

func TestParseStage_UnknownDefaultsToInit(t *testing.T) {
	assert.Equal(t, StageInit, ParseStage("astral_projection"))
	assert.Equal(t, StageInit, ParseStage(""))
}
