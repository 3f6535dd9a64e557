// Package workload converts session timing and case counts into throughput,
// threshold status, and a fatigue index.
package workload

import "time"

// Input is the session timing record supplied by the caller.
type Input struct {
	SessionStart time.Time `json:"session_start"`
	Now          time.Time `json:"now"`

	CasesCompleted   int `json:"cases_completed"`
	TotalCases       int `json:"total_cases"`
	CurrentCaseIndex int `json:"current_case_index"`

	// Survey is an optional NASA-TLX style self-report, 0-100 per dimension.
	Survey *TLXSurvey `json:"survey,omitempty"`

	// Breaks are subtracted from elapsed time before computing throughput.
	Breaks []Interval `json:"breaks,omitempty"`
}

// TLXSurvey holds the six NASA-TLX dimensions. Performance is inverted:
// high self-rated performance indicates low workload.
type TLXSurvey struct {
	MentalDemand   float64 `json:"mental_demand"`
	PhysicalDemand float64 `json:"physical_demand"`
	TemporalDemand float64 `json:"temporal_demand"`
	Performance    float64 `json:"performance"`
	Effort         float64 `json:"effort"`
	Frustration    float64 `json:"frustration"`
}

// Interval is a closed time range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Minutes returns the interval length in minutes, never negative.
func (i Interval) Minutes() float64 {
	m := i.End.Sub(i.Start).Minutes()
	if m < 0 {
		return 0
	}
	return m
}

// ThresholdStatus is the traffic-light workload state.
type ThresholdStatus string

const (
	StatusGreen  ThresholdStatus = "GREEN"
	StatusYellow ThresholdStatus = "YELLOW"
	StatusRed    ThresholdStatus = "RED"
)

// FatigueLevel is the ordinal fatigue classification.
type FatigueLevel string

const (
	FatigueLow      FatigueLevel = "LOW"
	FatigueModerate FatigueLevel = "MODERATE"
	FatigueHigh     FatigueLevel = "HIGH"
	FatigueCritical FatigueLevel = "CRITICAL"
)

// Metrics is the computed workload record. Immutable once returned.
type Metrics struct {
	SessionMinutes   float64 `json:"session_minutes"`
	EffectiveMinutes float64 `json:"effective_minutes"`
	BreakMinutes     float64 `json:"break_minutes"`

	CasesCompleted   int     `json:"cases_completed"`
	TotalCases       int     `json:"total_cases"`
	CurrentCaseIndex int     `json:"current_case_index"`
	CasesPerHour     float64 `json:"cases_per_hour"`

	ThresholdStatus ThresholdStatus `json:"threshold_status"`

	FatigueIndex          int          `json:"fatigue_index"` // 0-100
	FatigueLevel          FatigueLevel `json:"fatigue_level"`
	ImmediateBreakAdvised bool         `json:"immediate_break_advised"`

	Conclusion string `json:"conclusion"`
}
