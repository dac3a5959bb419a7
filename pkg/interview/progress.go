package interview

// Tracker derives stage completion state from the running collected
// field map. It holds no per-session state.
type Tracker struct {
	catalog *Catalog
}

// NewTracker creates a progress tracker over a catalog.
func NewTracker(catalog *Catalog) *Tracker {
	return &Tracker{catalog: catalog}
}

// Progress computes the completion state of a stage against the
// collected fields. A stage with zero requirements always reports
// CanProceed.
func (t *Tracker) Progress(stage string, collected map[string]string) Progress {
	reqs := t.catalog.Requirements(stage)

	p := Progress{
		Collected: make(map[string]string, len(collected)),
	}
	for _, r := range reqs {
		have := collected[r.Name] != ""
		if have {
			p.Collected[r.Name] = collected[r.Name]
		}
		if r.Level == Required {
			p.RequiredTotal++
			if have {
				p.RequiredCollected++
			} else {
				p.Missing = append(p.Missing, r.Description)
			}
		} else {
			p.OptionalTotal++
			if have {
				p.OptionalCollected++
			}
		}
	}

	p.CanProceed = p.RequiredCollected == p.RequiredTotal
	p.Complete = p.CanProceed && p.OptionalCollected == p.OptionalTotal
	if p.RequiredTotal == 0 {
		p.Percent = 100
	} else {
		p.Percent = 100 * float64(p.RequiredCollected) / float64(p.RequiredTotal)
	}
	return p
}
