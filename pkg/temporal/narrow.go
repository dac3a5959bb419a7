package temporal

import (
	"sort"
	"strings"
)

// EventHint maps a lifestyle keyword to the hours it makes plausible.
// Tables are ordered: the first matching keyword wins.
type EventHint struct {
	Keyword string `koanf:"keyword" json:"keyword"`
	Hours   []int  `koanf:"hours" json:"hours"`
}

// DefaultEventHints returns the built-in event-narrowing table. These
// are hand-tuned heuristics; deployments can override them via config.
func DefaultEventHints() []EventHint {
	return []EventHint{
		{Keyword: "early riser", Hours: []int{5, 6, 7, 8}},
		{Keyword: "wake early", Hours: []int{5, 6, 7, 8}},
		{Keyword: "night shift", Hours: []int{21, 22, 23, 0}},
		{Keyword: "night owl", Hours: []int{22, 23, 0, 1}},
		{Keyword: "up late", Hours: []int{22, 23, 0, 1}},
		{Keyword: "stay up", Hours: []int{22, 23, 0, 1}},
		{Keyword: "before dawn", Hours: []int{3, 4, 5}},
		{Keyword: "after midnight", Hours: []int{0, 1, 2, 3}},
		{Keyword: "around lunch", Hours: []int{11, 12, 13}},
		{Keyword: "around dinner", Hours: []int{18, 19, 20}},
		{Keyword: "after work", Hours: []int{17, 18, 19, 20}},
		{Keyword: "during school", Hours: []int{8, 9, 10, 11, 14, 15, 16}},
	}
}

// NarrowByEvent intersects the current candidate set with the hours
// implied by the first matching keyword in the hint table. A smaller,
// non-empty intersection replaces the set. When the set shrinks to two
// or fewer hours the status tightens to Uncertain with the first
// member as the representative hour. A narrowed Unknown becomes
// KnownRange; the set stayed a range, it just got smaller.
func NarrowByEvent(current Certainty, event string, hints []EventHint) Certainty {
	if current.Status == StatusCertain {
		return current
	}
	lower := strings.ToLower(event)

	var implied []int
	for _, h := range hints {
		if strings.Contains(lower, h.Keyword) {
			implied = h.Hours
			break
		}
	}
	if len(implied) == 0 {
		return current
	}

	return applyNarrowedSet(current, intersectHours(current.Candidates, implied), "event")
}

// applyNarrowedSet replaces the candidate set when the narrowed set is
// a strictly smaller non-empty subset, adjusting status per the
// shrink rules.
func applyNarrowedSet(current Certainty, narrowed []int, source string) Certainty {
	if len(narrowed) == 0 || len(narrowed) >= len(current.Candidates) {
		return current
	}

	out := current
	out.Candidates = narrowed
	out.Source = source

	if len(narrowed) <= 2 {
		h := narrowed[0]
		out.Status = StatusUncertain
		out.Hour = &h
		out.Confidence = 0.6
		return out
	}
	if out.Status == StatusUnknown {
		out.Status = StatusKnownRange
		out.Confidence = 0.4
	}
	return out
}

// intersectHours returns the hours present in both sets, preserving
// the order of the implied set so the first member stays the most
// plausible representative.
func intersectHours(current, implied []int) []int {
	in := make(map[int]bool, len(current))
	for _, h := range current {
		in[h] = true
	}
	var out []int
	for _, h := range implied {
		if in[h] {
			out = append(out, h)
		}
	}
	return out
}

// NarrowToSubset applies an externally supplied subset, typically one
// returned by an NLU collaborator, with the same shrink rules as
// NarrowByEvent. Hours outside the current candidate set are ignored.
// The optional best hour and confidence override the defaults when the
// subset is accepted.
func NarrowToSubset(current Certainty, subset []int, bestHour *int, confidence float64) Certainty {
	if current.Status == StatusCertain {
		return current
	}
	narrowed := intersectHours(current.Candidates, dedupeHours(subset))
	out := applyNarrowedSet(current, narrowed, "nlu")
	if len(out.Candidates) == len(current.Candidates) {
		return current
	}
	if bestHour != nil {
		for _, h := range out.Candidates {
			if h == *bestHour {
				hv := h
				out.Hour = &hv
				break
			}
		}
	}
	if confidence > 0 {
		out.Confidence = confidence
	}
	return out
}

func dedupeHours(hours []int) []int {
	seen := make(map[int]bool, len(hours))
	var out []int
	for _, h := range hours {
		if h < 0 || h > 23 || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// sortedCopy returns a sorted copy of the hour set.
func sortedCopy(hours []int) []int {
	out := append([]int(nil), hours...)
	sort.Ints(out)
	return out
}
