package temporal

import (
	"regexp"
	"strconv"
	"strings"
)

// Period is a named broad period of the day. End is exclusive and may
// wrap past midnight (Start > End).
type Period struct {
	Name  string `koanf:"name" json:"name"`
	Start int    `koanf:"start" json:"start"`
	End   int    `koanf:"end" json:"end"`
}

// Hours enumerates the hours covered by the period, handling
// midnight-crossing ranges.
func (p Period) Hours() []int {
	var hours []int
	for h := p.Start; h != p.End; h = (h + 1) % 24 {
		hours = append(hours, h)
		if len(hours) >= 24 {
			break
		}
	}
	return hours
}

// DefaultPeriods returns the built-in named-period table. The order
// matters: more specific labels come first.
func DefaultPeriods() []Period {
	return []Period{
		{Name: "early morning", Start: 5, End: 8},
		{Name: "late night", Start: 23, End: 3},
		{Name: "midnight", Start: 23, End: 1},
		{Name: "dawn", Start: 5, End: 7},
		{Name: "noon", Start: 11, End: 13},
		{Name: "midday", Start: 11, End: 13},
		{Name: "morning", Start: 8, End: 12},
		{Name: "afternoon", Start: 13, End: 18},
		{Name: "evening", Start: 17, End: 21},
		{Name: "dusk", Start: 17, End: 19},
		{Name: "night", Start: 20, End: 24 % 24},
	}
}

var (
	clockPattern   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	oclockPattern  = regexp.MustCompile(`\b(\d{1,2})\s*o'?clock(?:\s+(\d{1,2}))?`)
	meridiemHour   = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|a\.m\.?|p\.m\.?)\b`)
	uncertainWords = []string{"around", "about", "roughly", "approximately", "approx", "maybe", "or so"}
	eveningWords   = []string{"pm", "p.m", "afternoon", "evening", "night", "tonight"}
)

// ParseTimeText converts a free-text time description into a Certainty.
//
// Numeric hour patterns win over broader descriptions, so
// "afternoon, around 3 o'clock" resolves to hour 15 rather than the
// afternoon range. Without a numeric hour, a named broad period is
// tried, then one of the 12 traditional two-hour blocks. Text with no
// recognizable time yields Unknown with all 24 hours as candidates.
func ParseTimeText(text string) Certainty {
	return ParseTimeTextWith(text, DefaultPeriods())
}

// ParseTimeTextWith is ParseTimeText with a caller-supplied period
// table, for deployments that tune the policy tables via config.
func ParseTimeTextWith(text string, periods []Period) Certainty {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Unknown()
	}

	if hour, minute, ok := matchNumericHour(lower); ok {
		hour = applyMeridiem(hour, lower)
		if hasUncertainQualifier(lower) {
			h := hour
			return Certainty{
				Status:     StatusUncertain,
				Hour:       &h,
				Minute:     minute,
				Candidates: AdjacentHours(hour),
				Confidence: 0.6,
				Source:     "numeric",
			}
		}
		h := hour
		return Certainty{
			Status:     StatusCertain,
			Hour:       &h,
			Minute:     minute,
			Confidence: 0.9,
			Source:     "numeric",
		}
	}

	for _, p := range periods {
		if strings.Contains(lower, p.Name) {
			hours := p.Hours()
			if len(hours) == 0 {
				continue
			}
			return Certainty{
				Status:     StatusKnownRange,
				RangeName:  p.Name,
				Candidates: hours,
				Confidence: 0.5,
				Source:     "period",
			}
		}
	}

	if block, ok := matchBlockName(lower); ok {
		pair := BlockHours(block)
		rep := BlockRepresentative(block)
		h := rep
		return Certainty{
			Status:     StatusKnownRange,
			Hour:       &h,
			RangeName:  BlockName(block) + " hour",
			Candidates: []int{pair[0], pair[1]},
			Confidence: 0.7,
			Source:     "block",
		}
	}

	return Unknown()
}

// matchNumericHour extracts an hour (and optional minute) from H:MM,
// "N o'clock [MM]", or "N am/pm" forms. Out-of-range values are
// rejected rather than clamped.
func matchNumericHour(lower string) (int, *int, bool) {
	if m := clockPattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			mn := minute
			return hour, &mn, true
		}
	}
	if m := oclockPattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour <= 23 {
			var minute *int
			if m[2] != "" {
				if v, err := strconv.Atoi(m[2]); err == nil && v <= 59 {
					minute = &v
				}
			}
			return hour, minute, true
		}
	}
	if m := meridiemHour.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour >= 1 && hour <= 12 {
			return hour, nil, true
		}
	}
	return 0, nil, false
}

// applyMeridiem shifts a 12-hour clock reading into 24-hour form using
// period words found elsewhere in the text.
func applyMeridiem(hour int, lower string) int {
	if hour >= 13 {
		return hour
	}
	if hour == 12 {
		if strings.Contains(lower, "midnight") {
			return 0
		}
		return 12
	}
	for _, w := range eveningWords {
		if strings.Contains(lower, w) && hour >= 1 {
			return hour + 12
		}
	}
	return hour
}

func hasUncertainQualifier(lower string) bool {
	for _, w := range uncertainWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// matchBlockName matches "<zodiac> hour" and "hour of the <zodiac>".
func matchBlockName(lower string) (int, bool) {
	for i, name := range blockNames {
		if strings.Contains(lower, name+" hour") ||
			strings.Contains(lower, "hour of the "+name) {
			return i, true
		}
	}
	return 0, false
}
