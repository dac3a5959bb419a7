// Package temporal converts fuzzy descriptions of "when" into bounded,
// weighted candidate-hour sets. It supports exact hours, named broad
// periods, the 12 traditional two-hour blocks, event-based narrowing,
// and an optional true-solar-time correction.
//
// All functions are pure and safe for concurrent use.
package temporal

import (
	"sort"
)

// Status describes how precisely a time is known.
type Status string

const (
	// StatusCertain means an exact hour is known.
	StatusCertain Status = "certain"
	// StatusKnownRange means the hour falls within a named range.
	StatusKnownRange Status = "known_range"
	// StatusUncertain means a best-guess hour exists with nearby alternatives.
	StatusUncertain Status = "uncertain"
	// StatusUnknown means nothing is known; all 24 hours remain possible.
	StatusUnknown Status = "unknown"
)

// Certainty is a typed time-certainty record.
//
// Invariants: StatusCertain implies Hour is set. StatusUnknown implies
// Hour is nil and Candidates covers all 24 hours. For any other status
// Candidates is a non-empty subset of [0,23].
type Certainty struct {
	Status     Status  `json:"status"`
	Hour       *int    `json:"hour,omitempty"`
	Minute     *int    `json:"minute,omitempty"`
	RangeName  string  `json:"range_name,omitempty"`
	Candidates []int   `json:"candidates,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// Unknown returns a Certainty with no information: all 24 hours possible.
func Unknown() Certainty {
	return Certainty{
		Status:     StatusUnknown,
		Candidates: AllHours(),
		Confidence: 0.0,
		Source:     "none",
	}
}

// Exact returns a Certainty for a precisely known hour.
func Exact(hour int) Certainty {
	h := hour
	return Certainty{
		Status:     StatusCertain,
		Hour:       &h,
		Confidence: 0.9,
		Source:     "exact",
	}
}

// Normalize repairs a structurally invalid Certainty, typically one
// restored from a persisted snapshot. Invalid records reset to Unknown
// rather than failing the restore.
func (c Certainty) Normalize() Certainty {
	switch c.Status {
	case StatusCertain:
		if c.Hour == nil || *c.Hour < 0 || *c.Hour > 23 {
			return Unknown()
		}
		return c
	case StatusKnownRange, StatusUncertain:
		if len(c.Candidates) == 0 {
			return Unknown()
		}
		for _, h := range c.Candidates {
			if h < 0 || h > 23 {
				return Unknown()
			}
		}
		if c.Hour != nil && (*c.Hour < 0 || *c.Hour > 23) {
			return Unknown()
		}
		return c
	case StatusUnknown:
		if len(c.Candidates) != 24 {
			return Unknown()
		}
		return c
	default:
		return Unknown()
	}
}

// AllHours returns 0 through 23.
func AllHours() []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

// blockNames are the zodiac labels of the 12 traditional two-hour
// blocks, in order. Block 0 runs 23:00-01:00.
var blockNames = [12]string{
	"rat", "ox", "tiger", "rabbit", "dragon", "snake",
	"horse", "goat", "monkey", "rooster", "dog", "pig",
}

// BlockCount is the number of traditional two-hour blocks in a day.
const BlockCount = 12

// BlockOf returns the index of the traditional two-hour block
// containing hour. Block 0 covers 23:00-01:00; block i (i >= 1) covers
// [2i-1, 2i+1).
func BlockOf(hour int) int {
	h := ((hour % 24) + 24) % 24
	if h == 23 || h == 0 {
		return 0
	}
	return (h + 1) / 2
}

// BlockHours returns the two hours belonging to block i.
func BlockHours(i int) [2]int {
	idx := ((i % BlockCount) + BlockCount) % BlockCount
	if idx == 0 {
		return [2]int{23, 0}
	}
	return [2]int{2*idx - 1, 2 * idx}
}

// BlockName returns the zodiac label of block i.
func BlockName(i int) string {
	return blockNames[((i%BlockCount)+BlockCount)%BlockCount]
}

// BlockRepresentative returns the midpoint hour of block i. The
// midnight-crossing block maps to 0.
func BlockRepresentative(i int) int {
	idx := ((i % BlockCount) + BlockCount) % BlockCount
	if idx == 0 {
		return 0
	}
	return 2 * idx
}

// AdjacentHours returns the two-hour block containing hour plus the
// boundary hour of the previous and next block, cyclic over the 12
// blocks. The result is sorted and never exceeds six hours.
func AdjacentHours(hour int) []int {
	b := BlockOf(hour)
	cur := BlockHours(b)
	prev := BlockHours(b - 1)
	next := BlockHours(b + 1)

	seen := map[int]bool{
		cur[0]:  true,
		cur[1]:  true,
		prev[1]: true,
		next[0]: true,
	}
	hours := make([]int, 0, len(seen))
	for h := range seen {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

// hoursInBlock reports whether the set contains any hour of block i and
// returns the smallest such hour.
func hoursInBlock(set []int, block int) (int, bool) {
	best := -1
	for _, h := range set {
		if BlockOf(h) != block {
			continue
		}
		if best == -1 || h < best {
			best = h
		}
	}
	return best, best != -1
}
