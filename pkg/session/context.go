package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

// DefaultHistoryCap bounds stored conversation history. When the cap
// is reached the oldest exchange is evicted first.
const DefaultHistoryCap = 50

// Exchange is one turn of the conversation.
type Exchange struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Context is the single mutable aggregate for one session. It is not
// safe for concurrent use; callers serialize access per session.
type Context struct {
	ID    string
	Stage Stage

	Category        string
	Description     string
	Seeds           []int
	BirthYear       int
	BirthMonth      int
	BirthDay        int
	Gender          string
	Calendar        string
	PersonalityCode string

	// Time is the birth-time certainty, refined as the conversation
	// progresses.
	Time temporal.Certainty

	// Events holds free-text retrospective anchors given by the user,
	// such as the birth-time supplement answer.
	Events []string

	// Adjustments carries per-topic confidence deltas produced by the
	// verify stage.
	Adjustments map[string]float64

	// Fields is the raw extracted field map keyed by requirement name.
	Fields map[string]string

	History    []Exchange
	HistoryCap int

	// NeedsTimeSupplement marks that the next user turn answers the
	// birth-time narrowing question rather than a stage gate.
	NeedsTimeSupplement bool
	// TimeSupplemented records that the narrowing question was already
	// asked, so it is asked at most once per session.
	TimeSupplemented bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewContext returns a fresh session context in the Init stage with an
// unknown birth time.
func NewContext() *Context {
	now := time.Now().UTC()
	return &Context{
		ID:          uuid.New().String(),
		Stage:       StageInit,
		Time:        temporal.Unknown(),
		Adjustments: make(map[string]float64),
		Fields:      make(map[string]string),
		HistoryCap:  DefaultHistoryCap,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AppendHistory records one exchange, evicting the oldest entry when
// the cap is exceeded.
func (c *Context) AppendHistory(role, text string) {
	limit := c.HistoryCap
	if limit <= 0 {
		limit = DefaultHistoryCap
	}
	c.History = append(c.History, Exchange{Role: role, Text: text, At: time.Now().UTC()})
	if len(c.History) > limit {
		c.History = c.History[len(c.History)-limit:]
	}
	c.UpdatedAt = time.Now().UTC()
}

// MergeFields folds newly extracted fields into the accumulated map.
// Existing values are overwritten only by non-empty replacements.
func (c *Context) MergeFields(fields map[string]string) {
	for k, v := range fields {
		if v == "" {
			continue
		}
		c.Fields[k] = v
	}
	c.UpdatedAt = time.Now().UTC()
}

// applyTyped projects the raw field map onto the typed aggregate
// fields. It is idempotent and tolerant of absent keys.
func (c *Context) applyTyped() {
	if v, ok := c.Fields["category"]; ok {
		c.Category = v
	}
	if v, ok := c.Fields["description"]; ok {
		c.Description = v
	}
	if v, ok := c.Fields["supplement"]; ok && v != "" && !strings.Contains(c.Description, v) {
		if c.Description != "" {
			c.Description += " " + v
		} else {
			c.Description = v
		}
	}
	if v, ok := c.Fields["seeds"]; ok {
		c.Seeds = parseSeeds(v)
	}
	if v, ok := c.Fields["birth_year"]; ok {
		c.BirthYear, _ = strconv.Atoi(v)
	}
	if v, ok := c.Fields["birth_month"]; ok {
		c.BirthMonth, _ = strconv.Atoi(v)
	}
	if v, ok := c.Fields["birth_day"]; ok {
		c.BirthDay, _ = strconv.Atoi(v)
	}
	if v, ok := c.Fields["gender"]; ok {
		c.Gender = v
	}
	if v, ok := c.Fields["calendar"]; ok {
		c.Calendar = v
	}
	if v, ok := c.Fields["personality_code"]; ok {
		c.PersonalityCode = strings.ToUpper(v)
	}
}

func parseSeeds(s string) []int {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > 9 {
			continue
		}
		out = append(out, n)
	}
	return out
}
