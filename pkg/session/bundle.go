package session

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

// BirthBundle is the package handed to downstream calculators once
// the collect gate has cleared. Hour is nil unless the birth time is
// certain; Candidates always carries a normalized weight distribution.
type BirthBundle struct {
	Year     int
	Month    int
	Day      int
	Calendar string
	Gender   string

	// Hour is the birth hour after the optional true-solar-time
	// correction. Nil when the time is not exact.
	Hour *int

	Candidates []temporal.Candidate
}

// BirthBundle assembles the downstream package. It fails until the
// collect stage's required fields are present.
func (m *Machine) BirthBundle() (*BirthBundle, error) {
	if m.sctx.BirthYear == 0 || m.sctx.BirthMonth == 0 || m.sctx.BirthDay == 0 {
		return nil, fmt.Errorf("birth date is incomplete")
	}

	b := &BirthBundle{
		Year:       m.sctx.BirthYear,
		Month:      m.sctx.BirthMonth,
		Day:        m.sctx.BirthDay,
		Calendar:   m.sctx.Calendar,
		Gender:     m.sctx.Gender,
		Candidates: temporal.CandidatesForDownstream(m.sctx.Time, m.cfg.MaxCandidates),
	}

	if m.sctx.Time.Status == temporal.StatusCertain && m.sctx.Time.Hour != nil {
		hour := *m.sctx.Time.Hour
		if m.cfg.TrueSolarTime {
			minute := 0
			if m.sctx.Time.Minute != nil {
				minute = *m.sctx.Time.Minute
			}
			local := time.Date(b.Year, time.Month(b.Month), b.Day, hour, minute, 0, 0, time.Local)
			hour = temporal.TrueSolarHour(local, m.cfg.LongitudeEast)
		}
		b.Hour = &hour
	}

	return b, nil
}
