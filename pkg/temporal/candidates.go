package temporal

import (
	"sort"
)

// Candidate is one weighted hour hypothesis handed to downstream
// calculators.
type Candidate struct {
	Hour   int     `json:"hour"`
	Block  int     `json:"block"`
	Weight float64 `json:"weight"`
}

// DefaultMaxCandidates bounds the candidate list when the caller does
// not say otherwise.
const DefaultMaxCandidates = 4

// CandidatesForDownstream converts a Certainty into a bounded, weighted
// candidate list. Weights always sum to 1.0 and the list never exceeds
// max entries.
//
// Certain yields a single candidate at weight 1.0. KnownRange yields
// one candidate per two-hour block present in the set, equally
// weighted. Uncertain yields a primary at the stored hour (0.6) plus
// adjacent-block candidates at 0.2 each, deduplicated by block.
// Unknown yields one candidate per block at 1/12.
func CandidatesForDownstream(c Certainty, max int) []Candidate {
	if max <= 0 {
		max = DefaultMaxCandidates
	}

	var out []Candidate
	switch c.Status {
	case StatusCertain:
		hour := 0
		if c.Hour != nil {
			hour = *c.Hour
		}
		out = []Candidate{{Hour: hour, Block: BlockOf(hour), Weight: 1.0}}

	case StatusKnownRange:
		out = blockCandidates(c.Candidates)

	case StatusUncertain:
		hour := 0
		if c.Hour != nil {
			hour = *c.Hour
		} else if len(c.Candidates) > 0 {
			hour = c.Candidates[0]
		}
		primaryBlock := BlockOf(hour)
		out = []Candidate{{Hour: hour, Block: primaryBlock, Weight: 0.6}}
		for _, cand := range blockCandidates(c.Candidates) {
			if cand.Block == primaryBlock {
				continue
			}
			out = append(out, Candidate{Hour: cand.Hour, Block: cand.Block, Weight: 0.2})
			if len(out) >= max {
				break
			}
		}

	default: // StatusUnknown or anything unrecognized
		out = make([]Candidate, 0, BlockCount)
		for b := 0; b < BlockCount; b++ {
			out = append(out, Candidate{
				Hour:   BlockRepresentative(b),
				Block:  b,
				Weight: 1.0 / BlockCount,
			})
		}
	}

	return truncateAndNormalize(out, max)
}

// blockCandidates groups an hour set by two-hour block, one candidate
// per block at weight 1/blockCount.
func blockCandidates(hours []int) []Candidate {
	var blockIdxs []int
	seen := make(map[int]bool)
	for _, h := range sortedCopy(hours) {
		b := BlockOf(h)
		if !seen[b] {
			seen[b] = true
			blockIdxs = append(blockIdxs, b)
		}
	}
	out := make([]Candidate, 0, len(blockIdxs))
	for _, b := range blockIdxs {
		hour, _ := hoursInBlock(hours, b)
		out = append(out, Candidate{Hour: hour, Block: b, Weight: 1.0 / float64(len(blockIdxs))})
	}
	return out
}

// truncateAndNormalize keeps the max highest-weight candidates and
// rescales the remaining weights to sum to 1.0.
func truncateAndNormalize(cands []Candidate, max int) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Weight > cands[j].Weight
	})
	if len(cands) > max {
		cands = cands[:max]
	}
	var sum float64
	for _, c := range cands {
		sum += c.Weight
	}
	if sum <= 0 {
		return cands
	}
	for i := range cands {
		cands[i].Weight /= sum
	}
	return cands
}
