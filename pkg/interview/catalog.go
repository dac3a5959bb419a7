package interview

// Stage labels the catalog keys off. They match session.Stage labels.
const (
	StageInit     = "init"
	StageIcebreak = "icebreak"
	StageDeepen   = "deepen"
	StageCollect  = "collect"
	StageVerify   = "verify"
	StageReport   = "report"
	StageFollowUp = "followup"
)

// Catalog is the static table of per-stage field requirements. It is
// immutable after construction and safe to share across sessions.
type Catalog struct {
	byStage map[string][]Requirement
}

// NewCatalog builds a catalog from explicit stage tables.
func NewCatalog(byStage map[string][]Requirement) *Catalog {
	copied := make(map[string][]Requirement, len(byStage))
	for stage, reqs := range byStage {
		copied[stage] = append([]Requirement(nil), reqs...)
	}
	return &Catalog{byStage: copied}
}

// DefaultCatalog returns the built-in interview catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[string][]Requirement{
		StageIcebreak: {
			{
				Name:        "category",
				Description: "what the consultation is about",
				Level:       Required,
				Extract:     ExtractCategory,
				Example:     "career",
				Hint:        "tell me what you'd like to ask about",
			},
			{
				Name:        "description",
				Description: "the situation in the inquirer's own words",
				Level:       Required,
				Extract:     ExtractDescription,
				Example:     "thinking about changing jobs",
				Hint:        "describe your situation in a sentence or two",
			},
			{
				Name:        "seeds",
				Description: "three numbers between 1 and 9",
				Level:       Required,
				Extract:     ExtractSeeds,
				Example:     "7, 3, 5",
				Hint:        "give me three numbers between 1 and 9",
			},
		},
		StageDeepen: {
			{
				Name:        "supplement",
				Description: "anything else worth knowing about the situation",
				Level:       Optional,
				Extract:     ExtractDescription,
				Example:     "my manager just left the company",
				Hint:        "feel free to add more detail",
			},
		},
		StageCollect: {
			{
				Name:        "birth_year",
				Description: "four-digit birth year",
				Level:       Required,
				Extract:     ExtractBirthYear,
				Example:     "1990",
				Hint:        "what year were you born",
			},
			{
				Name:        "birth_month",
				Description: "birth month",
				Level:       Required,
				Extract:     ExtractBirthMonth,
				Example:     "May",
				Hint:        "which month were you born",
			},
			{
				Name:        "birth_day",
				Description: "day of the month",
				Level:       Required,
				Extract:     ExtractBirthDay,
				Example:     "15",
				Hint:        "which day of the month were you born",
			},
			{
				Name:        "birth_time",
				Description: "birth time, as precisely as known",
				Level:       Recommended,
				Extract:     ExtractBirthTime,
				Example:     "around 3 o'clock in the afternoon",
				Hint:        "what time were you born, roughly is fine",
			},
			{
				Name:        "gender",
				Description: "gender",
				Level:       Recommended,
				Extract:     ExtractGender,
				Example:     "male",
				Hint:        "are you male or female",
			},
			{
				Name:        "calendar",
				Description: "whether the date is solar or lunar calendar",
				Level:       Optional,
				Extract:     ExtractCalendar,
				Example:     "solar",
				Hint:        "is that the solar or the lunar calendar",
			},
			{
				Name:        "personality_code",
				Description: "four-letter personality type, if known",
				Level:       Optional,
				Extract:     ExtractPersonalityCode,
				Example:     "INTJ",
				Hint:        "share your personality type if you know it",
			},
		},
		StageVerify: {
			{
				Name:        "feedback",
				Description: "whether the retrospective reading felt accurate",
				Level:       Optional,
				Extract:     ExtractFeedback,
				Example:     "yes, spot on",
				Hint:        "did that match your experience",
			},
		},
	})
}

// Requirements returns the ordered requirement list for a stage. An
// unknown stage yields an empty list, which means no gate.
func (c *Catalog) Requirements(stage string) []Requirement {
	return c.byStage[stage]
}
