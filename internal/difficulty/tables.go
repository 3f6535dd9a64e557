package difficulty

import "fmt"

// All lookups in this file are explicit tables rather than branching logic
// so the mapping from case attributes to sub-scores is auditable as data.

// Factor names used as keys in Index.Factors.
const (
	FactorDensity     = "breast_density"
	FactorFindingType = "finding_type"
	FactorSize        = "finding_size"
	FactorLocation    = "finding_location"
	FactorConspicuity = "conspicuity"
	FactorDistractors = "distractors"
	FactorPrior       = "prior_comparison"
	FactorTechnical   = "technical_quality"
)

var densityScores = map[string]int{
	"A": 1,
	"B": 2,
	"C": 4,
	"D": 5,
}

var findingTypeScores = map[string]int{
	"mass":                            2,
	"calcification":                   3,
	"asymmetry":                       4,
	"architectural_distortion":        4,
	"subtle_architectural_distortion": 5,
}

const findingTypeDefaultScore = 3

// sizeBreaks maps finding size in millimetres to a sub-score. Smaller
// findings are harder to detect. Evaluated first-match, ascending.
var sizeBreaks = []struct {
	maxMm float64
	score int
}{
	{5, 5},
	{10, 4},
	{20, 3},
	{50, 2},
}

const sizeDefaultScore = 1 // >= 50mm

var locationScores = map[string]int{
	"central":       1,
	"upper_outer":   2,
	"peripheral":    3,
	"posterior":     3,
	"subareolar":    4,
	"axillary_tail": 4,
}

const locationDefaultScore = 3

var conspicuityScores = map[Conspicuity]int{
	ConspicuityObvious:    1,
	ConspicuityModerate:   3,
	ConspicuitySubtle:     4,
	ConspicuityVerySubtle: 5,
}

// distractorBreaks maps distractor count to a sub-score, first-match.
var distractorBreaks = []struct {
	maxCount int
	score    int
}{
	{0, 1},
	{1, 2},
	{2, 3},
	{4, 4},
}

const distractorDefaultScore = 5 // >= 5 distractors

// Prior comparison sub-scores. Recent priors make change detection far
// easier; no prior at all forces a single-study read.
const (
	priorRecentScore = 2 // available, <= 3 years old
	priorOldScore    = 3 // available, > 3 years old
	priorNoneScore   = 4
	priorRecentYears = 3.0
)

// technicalBreaks maps the issue count to a sub-score, first-match.
var technicalBreaks = []struct {
	maxIssues int
	score     int
}{
	{1, 3},
	{2, 4},
}

const technicalDefaultScore = 5 // >= 3 issues

// Composite-score thresholds for the ordinal level, first-match ascending.
var levelBreaks = []struct {
	maxScore int
	level    Level
}{
	{34, LevelLow},
	{59, LevelModerate},
	{79, LevelHigh},
}

const levelDefault = LevelVeryHigh

// radpeerBreaks predicts the RADPEER score a peer panel would assign to a
// miss, from the composite score. Hard cases earn score 2 (understandable
// miss); easy cases earn score 4 (should be seen nearly every time).
var radpeerBreaks = []struct {
	minScore int
	expected int
	label    string
}{
	{60, 2, "most reviewers would classify a miss as an understandable discrepancy"},
	{30, 3, "reviewers would expect the finding to be made most of the time"},
	{0, 4, "reviewers would expect the finding to be made almost every time"},
}

func sizeScore(mm float64) int {
	for _, b := range sizeBreaks {
		if mm < b.maxMm {
			return b.score
		}
	}
	return sizeDefaultScore
}

func distractorScore(count int) int {
	for _, b := range distractorBreaks {
		if count <= b.maxCount {
			return b.score
		}
	}
	return distractorDefaultScore
}

func technicalScore(issues int) int {
	for _, b := range technicalBreaks {
		if issues <= b.maxIssues {
			return b.score
		}
	}
	return technicalDefaultScore
}

func levelFor(score int) Level {
	for _, b := range levelBreaks {
		if score <= b.maxScore {
			return b.level
		}
	}
	return levelDefault
}

func reviewerAgreementFor(score int) ReviewerAgreement {
	for _, b := range radpeerBreaks {
		if score >= b.minScore {
			return ReviewerAgreement{ExpectedRadpeerScore: b.expected, Label: b.label}
		}
	}
	// Unreachable: the last break has minScore 0 and scores are clamped.
	return ReviewerAgreement{ExpectedRadpeerScore: 4, Label: radpeerBreaks[len(radpeerBreaks)-1].label}
}

func describeDensity(category string, score int) string {
	return fmt.Sprintf("BI-RADS density %s (sub-score %d/5)", category, score)
}

func describeSize(mm float64, score int) string {
	return fmt.Sprintf("finding size %.1fmm (sub-score %d/5)", mm, score)
}
