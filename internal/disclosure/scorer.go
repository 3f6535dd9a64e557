// Package disclosure evaluates whether an AI-limitation disclosure met the
// four-pillar intelligent-openness standard: accessible, intelligible,
// usable, assessable.
package disclosure

import "time"

// Record describes one AI-limitation disclosure as shown to the clinician.
type Record struct {
	Format          string   `json:"format,omitempty"`
	ValidationPhase string   `json:"validation_phase,omitempty"`
	DisplayText     string   `json:"display_text,omitempty"`
	MetricsShown    []string `json:"metrics_shown,omitempty"`

	ExposureDurationMs float64 `json:"exposure_duration_ms"`

	Comprehension  *ComprehensionCheck `json:"comprehension,omitempty"`
	AcknowledgedAt time.Time           `json:"acknowledged_at"`
}

// ComprehensionCheck is the optional question/answer pair verifying the
// disclosure was understood.
type ComprehensionCheck struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
}

// Level is the ordinal compliance classification.
type Level string

const (
	LevelNone        Level = "NONE"
	LevelPartial     Level = "PARTIAL"
	LevelSubstantial Level = "SUBSTANTIAL"
	LevelFull        Level = "FULL"
)

// Pillar is one evaluated openness pillar.
type Pillar struct {
	Met    bool    `json:"met"`
	Detail string  `json:"detail"`
	Value  float64 `json:"value,omitempty"` // supporting metric, ms where applicable
}

// Score is the IntelligentOpennessScore: four pillar evaluations, the
// aggregate 0-4 score, and the compliance level.
type Score struct {
	Accessible   Pillar `json:"accessible"`
	Intelligible Pillar `json:"intelligible"`
	Usable       Pillar `json:"usable"`
	Assessable   Pillar `json:"assessable"`

	OverallScore    int   `json:"overall_score"` // count of met pillars
	ComplianceLevel Level `json:"compliance_level"`
}

// MinExposureMs is the accessibility gate: the disclosure must have been on
// screen at least this long to count as genuinely available to the reader.
const MinExposureMs = 5000

// levelTable maps the met-pillar count to a compliance level.
var levelTable = [5]Level{LevelNone, LevelPartial, LevelPartial, LevelSubstantial, LevelFull}

// Evaluate scores a disclosure record against the four pillars. A nil
// record yields the fully-zeroed default, never an error.
func Evaluate(rec *Record, finalAssessmentAt time.Time) Score {
	if rec == nil {
		return Score{
			Accessible:      Pillar{Detail: "no disclosure record"},
			Intelligible:    Pillar{Detail: "no disclosure record"},
			Usable:          Pillar{Detail: "no disclosure record"},
			Assessable:      Pillar{Detail: "no disclosure record"},
			ComplianceLevel: LevelNone,
		}
	}

	s := Score{}

	s.Accessible = Pillar{
		Met:    rec.ExposureDurationMs >= MinExposureMs,
		Detail: "disclosure exposure duration against the 5s floor",
		Value:  rec.ExposureDurationMs,
	}

	s.Intelligible = Pillar{
		Met:    rec.Comprehension != nil && rec.Comprehension.Correct,
		Detail: "comprehension check present and answered correctly",
	}

	// Usable does not gate on a latency threshold; it records the interval
	// between disclosure acknowledgment and the locked decision.
	usable := !finalAssessmentAt.IsZero()
	var latencyMs float64
	if usable && !rec.AcknowledgedAt.IsZero() {
		latencyMs = finalAssessmentAt.Sub(rec.AcknowledgedAt).Seconds() * 1000
	}
	s.Usable = Pillar{
		Met:    usable,
		Detail: "decision timestamp recorded after disclosure",
		Value:  latencyMs,
	}

	// A disclosure record implies the AI reasoning trail was logged.
	s.Assessable = Pillar{
		Met:    true,
		Detail: "AI reasoning and metrics logged with the disclosure",
	}

	for _, p := range []Pillar{s.Accessible, s.Intelligible, s.Usable, s.Assessable} {
		if p.Met {
			s.OverallScore++
		}
	}
	s.ComplianceLevel = levelTable[s.OverallScore]

	return s
}
