// Package errclass assigns a perceptual error category to a missed finding
// using a fixed, auditable decision tree over attention evidence and the
// assessment timeline.
package errclass

import (
	"github.com/evidify/platform/internal/attention"
	"github.com/evidify/platform/internal/difficulty"
)

// Type is the closed set of error classifications.
type Type string

const (
	SearchError          Type = "SEARCH_ERROR"
	RecognitionError     Type = "RECOGNITION_ERROR"
	DecisionError        Type = "DECISION_ERROR"
	SatisfactionOfSearch Type = "SATISFACTION_OF_SEARCH"
	PrevalenceEffect     Type = "PREVALENCE_EFFECT"
	NoError              Type = "NO_ERROR"
)

// Prevalence is the base-rate context of the reading session.
type Prevalence string

const (
	PrevalenceLow    Prevalence = "LOW"
	PrevalenceNormal Prevalence = "NORMAL"
	PrevalenceHigh   Prevalence = "HIGH"
)

// GroundTruth describes the adjudicated truth for the case.
type GroundTruth struct {
	Abnormal    bool                   `json:"abnormal"`
	RegionID    string                 `json:"region_id,omitempty"`
	Conspicuity difficulty.Conspicuity `json:"conspicuity,omitempty"`
}

// Input bundles everything the decision tree reads. All fields are
// immutable; the classifier is a pure function.
type Input struct {
	Truth     GroundTruth       `json:"ground_truth"`
	Attention attention.Summary `json:"attention"`

	// InitialFlagged/FinalFlagged report whether the finding was flagged
	// in the corresponding locked assessment.
	InitialFlagged bool `json:"initial_flagged"`
	FinalFlagged   bool `json:"final_flagged"`

	// OtherFindingsNoted counts findings the reader did report in the case.
	OtherFindingsNoted int `json:"other_findings_noted"`

	Prevalence Prevalence `json:"prevalence,omitempty"`
}

// Evidence is the structured support for a classification, drawn verbatim
// from the attention summary and assessment timeline.
type Evidence struct {
	RegionVisited      bool    `json:"region_visited"`
	DwellMs            float64 `json:"dwell_ms"`
	MaxZoom            float64 `json:"max_zoom"`
	VisitCount         int     `json:"visit_count"`
	CoveragePercent    float64 `json:"coverage_percent"`
	OtherFindingsNoted int     `json:"other_findings_noted"`
	InitialFlagged     bool    `json:"initial_flagged"`
	FinalFlagged       bool    `json:"final_flagged"`
}

// Classification is the classifier's verdict: exactly one error type, a
// confidence percentage, and the fixed narrative pair for the branch taken.
type Classification struct {
	Type                 Type     `json:"type"`
	Confidence           int      `json:"confidence"`
	Evidence             Evidence `json:"evidence"`
	ScientificContext    string   `json:"scientific_context"`
	LiabilityImplication string   `json:"liability_implication"`
}
