package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

// Snapshot flattens a session context into a string key/value record.
// The format is schema-free on restore: unknown keys are ignored and
// missing keys take zero values, so older snapshots keep loading.
func Snapshot(c *Context) map[string]string {
	snap := map[string]string{
		"id":         c.ID,
		"stage":      c.Stage.String(),
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	putNonEmpty(snap, "category", c.Category)
	putNonEmpty(snap, "description", c.Description)
	putNonEmpty(snap, "gender", c.Gender)
	putNonEmpty(snap, "calendar", c.Calendar)
	putNonEmpty(snap, "personality_code", c.PersonalityCode)
	if len(c.Seeds) > 0 {
		snap["seeds"] = joinInts(c.Seeds)
	}
	if c.BirthYear != 0 {
		snap["birth_year"] = strconv.Itoa(c.BirthYear)
	}
	if c.BirthMonth != 0 {
		snap["birth_month"] = strconv.Itoa(c.BirthMonth)
	}
	if c.BirthDay != 0 {
		snap["birth_day"] = strconv.Itoa(c.BirthDay)
	}

	snap["time_status"] = string(c.Time.Status)
	snap["time_confidence"] = strconv.FormatFloat(c.Time.Confidence, 'f', -1, 64)
	if c.Time.Hour != nil {
		snap["time_hour"] = strconv.Itoa(*c.Time.Hour)
	}
	if c.Time.Minute != nil {
		snap["time_minute"] = strconv.Itoa(*c.Time.Minute)
	}
	putNonEmpty(snap, "time_range", c.Time.RangeName)
	putNonEmpty(snap, "time_source", c.Time.Source)
	if len(c.Time.Candidates) > 0 {
		snap["time_candidates"] = joinInts(c.Time.Candidates)
	}

	if len(c.Events) > 0 {
		data, _ := json.Marshal(c.Events)
		snap["events"] = string(data)
	}
	if len(c.Adjustments) > 0 {
		data, _ := json.Marshal(c.Adjustments)
		snap["adjustments"] = string(data)
	}
	snap["needs_time_supplement"] = strconv.FormatBool(c.NeedsTimeSupplement)
	snap["time_supplemented"] = strconv.FormatBool(c.TimeSupplemented)
	snap["history_cap"] = strconv.Itoa(c.HistoryCap)

	for k, v := range c.Fields {
		snap["field."+k] = v
	}
	for i, ex := range c.History {
		data, _ := json.Marshal(ex)
		snap[fmt.Sprintf("history.%04d", i)] = string(data)
	}

	return snap
}

// RestoreContext rebuilds a session context from a snapshot record.
// Legacy stage labels are remapped, a corrupt time record resets to
// Unknown, and malformed history entries are dropped. Restore never
// fails; the worst corruption yields a fresh-looking context that
// keeps its ID.
func RestoreContext(snap map[string]string) *Context {
	c := NewContext()
	if id := snap["id"]; id != "" {
		c.ID = id
	}
	c.Stage = ParseStage(snap["stage"])

	c.Category = snap["category"]
	c.Description = snap["description"]
	c.Gender = snap["gender"]
	c.Calendar = snap["calendar"]
	c.PersonalityCode = snap["personality_code"]
	c.Seeds = splitInts(snap["seeds"])
	c.BirthYear, _ = strconv.Atoi(snap["birth_year"])
	c.BirthMonth, _ = strconv.Atoi(snap["birth_month"])
	c.BirthDay, _ = strconv.Atoi(snap["birth_day"])

	cert := temporal.Certainty{
		Status:     temporal.Status(snap["time_status"]),
		RangeName:  snap["time_range"],
		Source:     snap["time_source"],
		Candidates: splitInts(snap["time_candidates"]),
	}
	cert.Confidence, _ = strconv.ParseFloat(snap["time_confidence"], 64)
	if v, ok := snap["time_hour"]; ok {
		if h, err := strconv.Atoi(v); err == nil {
			cert.Hour = &h
		}
	}
	if v, ok := snap["time_minute"]; ok {
		if mn, err := strconv.Atoi(v); err == nil {
			cert.Minute = &mn
		}
	}
	c.Time = cert.Normalize()

	if v := snap["events"]; v != "" {
		_ = json.Unmarshal([]byte(v), &c.Events)
	}
	if v := snap["adjustments"]; v != "" {
		_ = json.Unmarshal([]byte(v), &c.Adjustments)
	}
	if c.Adjustments == nil {
		c.Adjustments = make(map[string]float64)
	}
	c.NeedsTimeSupplement = snap["needs_time_supplement"] == "true"
	c.TimeSupplemented = snap["time_supplemented"] == "true"
	if v, err := strconv.Atoi(snap["history_cap"]); err == nil && v > 0 {
		c.HistoryCap = v
	}

	var historyKeys []string
	for k, v := range snap {
		switch {
		case strings.HasPrefix(k, "field."):
			c.Fields[strings.TrimPrefix(k, "field.")] = v
		case strings.HasPrefix(k, "history."):
			historyKeys = append(historyKeys, k)
		}
	}
	sort.Strings(historyKeys)
	for _, k := range historyKeys {
		var ex Exchange
		if err := json.Unmarshal([]byte(snap[k]), &ex); err != nil {
			continue
		}
		c.History = append(c.History, ex)
	}
	if len(c.History) > c.HistoryCap {
		c.History = c.History[len(c.History)-c.HistoryCap:]
	}

	if t, err := time.Parse(time.RFC3339Nano, snap["created_at"]); err == nil {
		c.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, snap["updated_at"]); err == nil {
		c.UpdatedAt = t
	}

	return c
}

func putNonEmpty(snap map[string]string, key, value string) {
	if value != "" {
		snap[key] = value
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
