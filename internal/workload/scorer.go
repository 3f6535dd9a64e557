package workload

import "math"

// Fixed ceilings and breakpoints. RED takes priority over YELLOW; YELLOW
// triggers at 80% of either ceiling.
const (
	MaxCasesPerHour    = 40.0
	MaxSessionMinutes  = 180.0
	warningFraction    = 0.8

	// Fatigue sub-score caps. The four components are capped individually
	// before summing; the total is clamped to [0,100].
	durationCap = 40.0
	loadCap     = 30.0
	positionCap = 20.0
	surveyCap   = 10.0

	immediateBreakIndex = 90
)

// fatigueBreaks maps the index to a level, first-match ascending.
var fatigueBreaks = []struct {
	maxIndex int
	level    FatigueLevel
}{
	{24, FatigueLow},
	{49, FatigueModerate},
	{74, FatigueHigh},
}

const fatigueDefault = FatigueCritical

// Score computes throughput, threshold status, and the fatigue index from
// session timing. Missing optional inputs (survey, breaks) contribute zero.
func Score(in Input) Metrics {
	sessionMin := in.Now.Sub(in.SessionStart).Minutes()
	if sessionMin < 0 {
		sessionMin = 0
	}

	var breakMin float64
	for _, b := range in.Breaks {
		breakMin += b.Minutes()
	}

	effectiveMin := sessionMin - breakMin
	if effectiveMin < 0 {
		effectiveMin = 0
	}

	var casesPerHour float64
	if effectiveMin > 0 {
		casesPerHour = float64(in.CasesCompleted) / effectiveMin * 60
	}

	status := thresholdStatus(casesPerHour, sessionMin)
	index := fatigueIndex(sessionMin, casesPerHour, in)
	level := fatigueLevelFor(index)

	m := Metrics{
		SessionMinutes:        sessionMin,
		EffectiveMinutes:      effectiveMin,
		BreakMinutes:          breakMin,
		CasesCompleted:        in.CasesCompleted,
		TotalCases:            in.TotalCases,
		CurrentCaseIndex:      in.CurrentCaseIndex,
		CasesPerHour:          casesPerHour,
		ThresholdStatus:       status,
		FatigueIndex:          index,
		FatigueLevel:          level,
		ImmediateBreakAdvised: index >= immediateBreakIndex,
	}
	m.Conclusion = conclusionFor(status, level)
	return m
}

// thresholdStatus is evaluated in priority order: RED, then YELLOW.
func thresholdStatus(casesPerHour, sessionMin float64) ThresholdStatus {
	if casesPerHour > MaxCasesPerHour || sessionMin > MaxSessionMinutes {
		return StatusRed
	}
	if casesPerHour >= warningFraction*MaxCasesPerHour || sessionMin >= warningFraction*MaxSessionMinutes {
		return StatusYellow
	}
	return StatusGreen
}

func fatigueIndex(sessionMin, casesPerHour float64, in Input) int {
	duration := math.Min(durationCap, sessionMin/MaxSessionMinutes*durationCap)
	load := math.Min(loadCap, casesPerHour/MaxCasesPerHour*loadCap)

	var position float64
	if in.TotalCases > 0 {
		position = math.Min(positionCap, float64(in.CurrentCaseIndex)/float64(in.TotalCases)*positionCap)
	}

	var survey float64
	if s := in.Survey; s != nil {
		// Performance is inverted: 100 means "performing well".
		mean := (s.MentalDemand + s.PhysicalDemand + s.TemporalDemand +
			(100 - s.Performance) + s.Effort + s.Frustration) / 6
		survey = math.Min(surveyCap, mean/100*surveyCap)
	}

	total := duration + load + position + survey
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return int(math.Round(total))
}

func fatigueLevelFor(index int) FatigueLevel {
	for _, b := range fatigueBreaks {
		if index <= b.maxIndex {
			return b.level
		}
	}
	return fatigueDefault
}

// conclusionFor selects the conclusion from a 2x2 decision table over
// (threshold status, fatigue level).
var conclusions = map[[2]bool]string{
	// {statusRed, fatigueHigh}
	{false, false}: "Session workload was within accepted limits and the modelled fatigue burden was low; reading conditions do not suggest a workload-related contribution to error.",
	{false, true}:  "Session workload was within accepted limits, but the modelled fatigue burden was elevated; late-session vigilance decline is a plausible contributing factor.",
	{true, false}:  "Session workload exceeded accepted limits despite a modest modelled fatigue burden; throughput pressure is a documented contributor to reduced detection performance.",
	{true, true}:   "Session workload exceeded accepted limits and the modelled fatigue burden was elevated; conditions were consistent with substantially degraded detection performance.",
}

func conclusionFor(status ThresholdStatus, level FatigueLevel) string {
	red := status == StatusRed
	fatigued := level == FatigueHigh || level == FatigueCritical
	return conclusions[[2]bool{red, fatigued}]
}
