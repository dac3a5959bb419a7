package interview

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

// CategoryTable maps canonical inquiry categories to their trigger
// keywords. Order fixes the digit-menu assignment: replying "1" means
// the first category. Deployments may override the table via config.
type CategoryTable struct {
	Order    []string
	Keywords map[string][]string
}

// DefaultCategories returns the built-in category table.
func DefaultCategories() CategoryTable {
	return CategoryTable{
		Order: []string{"career", "love", "wealth", "health", "study", "family"},
		Keywords: map[string][]string{
			"career": {"career", "job", "work", "promotion", "boss", "profession"},
			"love":   {"love", "relationship", "marriage", "partner", "dating", "romance"},
			"wealth": {"wealth", "money", "finance", "investment", "fortune", "income"},
			"health": {"health", "illness", "sick", "body", "sleep"},
			"study":  {"study", "exam", "school", "education", "degree", "learning"},
			"family": {"family", "children", "parents", "kids", "home"},
		},
	}
}

var defaultCategories = DefaultCategories()

// ExtractCategory finds the inquiry category via a whole-text digit
// menu reply or a keyword lookup.
func ExtractCategory(text string) string {
	return defaultCategories.Extract(text)
}

// Extract runs the category lookup against the table.
func (t CategoryTable) Extract(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 1 && trimmed[0] >= '1' && trimmed[0] <= '9' {
		idx := int(trimmed[0]-'1')
		if idx < len(t.Order) {
			return t.Order[idx]
		}
		return ""
	}

	lower := strings.ToLower(trimmed)
	for _, cat := range t.Order {
		for _, kw := range t.Keywords[cat] {
			if containsWord(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

// ExtractDescription treats any non-trivial free text as the inquiry
// description.
func ExtractDescription(text string) string {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < 4 {
		return ""
	}
	return trimmed
}

// ExtractSeeds collects the first three distinct digits 1-9 in order
// of first appearance. Fewer than three digits is a miss: the ritual
// needs exactly three numbers.
func ExtractSeeds(text string) string {
	var seeds []string
	seen := [10]bool{}
	for i := 0; i < len(text) && len(seeds) < 3; i++ {
		c := text[i]
		if c >= '1' && c <= '9' && !seen[c-'0'] {
			seen[c-'0'] = true
			seeds = append(seeds, string(rune(c)))
		}
	}
	if len(seeds) < 3 {
		return ""
	}
	return strings.Join(seeds, ",")
}

var (
	yearPattern   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	numericDate   = regexp.MustCompile(`\b(19\d{2}|20\d{2})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	dayAfterMonth = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\b`)

	monthNames = []string{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"}
	monthAbbrevs = []string{"jan", "feb", "mar", "apr", "may", "jun",
		"jul", "aug", "sep", "oct", "nov", "dec"}
)

// ExtractBirthYear finds a four-digit year.
func ExtractBirthYear(text string) string {
	if m := numericDate.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := yearPattern.FindString(text); m != "" {
		return m
	}
	return ""
}

// ExtractBirthMonth finds a month by name or numeric date.
func ExtractBirthMonth(text string) string {
	if _, month, ok := monthByName(text); ok {
		return strconv.Itoa(month)
	}
	if m := numericDate.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[2]); err == nil && v >= 1 && v <= 12 {
			return strconv.Itoa(v)
		}
	}
	return ""
}

// ExtractBirthDay finds the day of month, either from a numeric date
// or as the number following a month name.
func ExtractBirthDay(text string) string {
	if m := numericDate.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[3]); err == nil && v >= 1 && v <= 31 {
			return strconv.Itoa(v)
		}
	}
	if pos, _, ok := monthByName(text); ok {
		rest := text[pos:]
		for _, m := range dayAfterMonth.FindAllStringSubmatch(rest, -1) {
			if v, err := strconv.Atoi(m[1]); err == nil && v >= 1 && v <= 31 {
				return strconv.Itoa(v)
			}
		}
	}
	return ""
}

// monthByName returns the byte position just past the first month name
// in the text, and the month number.
func monthByName(text string) (int, int, bool) {
	lower := strings.ToLower(text)
	for i, name := range monthNames {
		if idx := indexWord(lower, name); idx >= 0 {
			return idx + len(name), i + 1, true
		}
	}
	for i, abbr := range monthAbbrevs {
		if idx := indexWord(lower, abbr); idx >= 0 {
			return idx + len(abbr), i + 1, true
		}
	}
	return 0, 0, false
}

var unknownTimePhrases = []string{
	"don't remember", "dont remember", "don't know", "dont know",
	"not sure", "no idea", "can't recall", "cant recall", "unknown",
	"never knew", "forgot",
}

// ExtractBirthTime recognizes either a parseable time description or
// an explicit statement that the time is unknown. The session layer
// re-parses the full text to build the typed certainty record; this
// extractor only decides presence for gating.
func ExtractBirthTime(text string) string {
	lower := strings.ToLower(text)
	for _, p := range unknownTimePhrases {
		if strings.Contains(lower, p) {
			return "unknown"
		}
	}
	c := temporal.ParseTimeText(text)
	if c.Status == temporal.StatusUnknown {
		return ""
	}
	if c.Hour != nil {
		return strconv.Itoa(*c.Hour)
	}
	return c.RangeName
}

var (
	femalePattern = regexp.MustCompile(`(?i)\b(female|woman|girl|she|her)\b`)
	malePattern   = regexp.MustCompile(`(?i)\b(male|man|boy|he|him)\b`)
)

// ExtractGender matches a bounded keyword set. Female keywords are
// checked first because "male" is a substring of "female".
func ExtractGender(text string) string {
	if femalePattern.MatchString(text) {
		return "female"
	}
	if malePattern.MatchString(text) {
		return "male"
	}
	return ""
}

// ExtractCalendar distinguishes lunar from solar dates.
func ExtractCalendar(text string) string {
	lower := strings.ToLower(text)
	if containsWord(lower, "lunar") {
		return "lunar"
	}
	if containsWord(lower, "solar") || containsWord(lower, "gregorian") {
		return "solar"
	}
	return ""
}

var personalityPattern = regexp.MustCompile(`(?i)\b([ei][ns][tf][jp])\b`)

// ExtractPersonalityCode finds a four-letter type indicator like INTJ.
func ExtractPersonalityCode(text string) string {
	if m := personalityPattern.FindString(text); m != "" {
		return strings.ToUpper(m)
	}
	return ""
}

var (
	negativeFeedback = []string{"not really", "not accurate", "inaccurate", "wrong", "off the mark", "doesn't fit", "doesnt fit", "no"}
	positiveFeedback = []string{"accurate", "spot on", "exactly", "correct", "right", "yes", "true"}
)

// ExtractFeedback classifies verification feedback against bounded
// yes/no keyword sets. Negations are checked first so "not accurate"
// does not read as agreement.
func ExtractFeedback(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range negativeFeedback {
		if matchKeyword(lower, kw) {
			return "inaccurate"
		}
	}
	for _, kw := range positiveFeedback {
		if matchKeyword(lower, kw) {
			return "accurate"
		}
	}
	return ""
}

// matchKeyword uses word-boundary matching for single words and plain
// substring matching for phrases.
func matchKeyword(lower, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(lower, kw)
	}
	return containsWord(lower, kw)
}

// containsWord reports whether lower contains kw as a whole word.
func containsWord(lower, kw string) bool {
	return indexWord(lower, kw) >= 0
}

// indexWord finds kw in lower at word boundaries.
func indexWord(lower, kw string) int {
	for from := 0; ; {
		idx := strings.Index(lower[from:], kw)
		if idx < 0 {
			return -1
		}
		idx += from
		beforeOK := idx == 0 || !isWordByte(lower[idx-1])
		after := idx + len(kw)
		afterOK := after >= len(lower) || !isWordByte(lower[after])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
