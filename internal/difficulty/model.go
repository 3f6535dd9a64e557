package difficulty

// Input carries the optional per-case attributes the scorer reads. Every
// field may be absent; absent factors simply do not contribute to the
// composite score.
type Input struct {
	// Density is the BI-RADS breast density category "A" through "D".
	Density string `json:"density,omitempty"`

	Finding     *Finding         `json:"finding,omitempty"`
	Distractors *Distractors     `json:"distractors,omitempty"`
	Prior       *PriorComparison `json:"prior_comparison,omitempty"`

	// TechnicalIssues lists image-quality problems (positioning, motion,
	// exposure). The factor is only scored when at least one is present.
	TechnicalIssues []string `json:"technical_issues,omitempty"`

	// Percentile overrides the default percentile (the composite score
	// itself) when an external case-bank percentile is known.
	Percentile *float64 `json:"percentile,omitempty"`
}

// Finding describes the ground-truth abnormality, when one exists.
type Finding struct {
	Type        string      `json:"type,omitempty"`
	SizeMm      float64     `json:"size_mm,omitempty"`
	Location    string      `json:"location,omitempty"`
	Conspicuity Conspicuity `json:"conspicuity,omitempty"`
}

// Conspicuity grades how visually apparent the finding is.
type Conspicuity string

const (
	ConspicuityObvious    Conspicuity = "OBVIOUS"
	ConspicuityModerate   Conspicuity = "MODERATE"
	ConspicuitySubtle     Conspicuity = "SUBTLE"
	ConspicuityVerySubtle Conspicuity = "VERY_SUBTLE"
)

// Subtle reports whether the finding is in the subtle range.
func (c Conspicuity) Subtle() bool {
	return c == ConspicuitySubtle || c == ConspicuityVerySubtle
}

// Distractors describes benign features competing for the reader's attention.
type Distractors struct {
	Count int      `json:"count"`
	Types []string `json:"types,omitempty"`
}

// PriorComparison describes availability of prior imaging for comparison.
type PriorComparison struct {
	Available bool    `json:"available"`
	YearsAgo  float64 `json:"years_ago,omitempty"`
}

// Level is the ordinal difficulty classification.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY_HIGH"
)

// Factor is one scored difficulty contributor.
type Factor struct {
	Score       int    `json:"score"` // 1 (easy) to 5 (hard)
	Description string `json:"description"`
}

// ReviewerAgreement predicts how a peer-review panel would grade a miss on
// this case, expressed as a RADPEER-style score.
type ReviewerAgreement struct {
	ExpectedRadpeerScore int    `json:"expected_radpeer_score"` // 1-4
	Label                string `json:"label"`
}

// Index is the Case Difficulty Index: a composite 0-100 score with its
// contributing factors and citation-backed narrative. Computed once per
// case and never mutated afterward.
type Index struct {
	CompositeScore    int               `json:"composite_score"`
	Percentile        float64           `json:"percentile"`
	Level             Level             `json:"level"`
	ReviewerAgreement ReviewerAgreement `json:"reviewer_agreement"`
	Factors           map[string]Factor `json:"factors"`
	ScientificBasis   string            `json:"scientific_basis"`
	ExpectedMissRate  string            `json:"expected_miss_rate"`
}
