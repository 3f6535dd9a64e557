package difficulty

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Score computes the Case Difficulty Index from whatever factor inputs are
// present. Absent input is legal: with zero factors the index defaults to
// the midpoint (50, MODERATE) rather than failing.
func Score(in Input) Index {
	factors := map[string]Factor{}

	if s, ok := densityScores[in.Density]; ok {
		factors[FactorDensity] = Factor{Score: s, Description: describeDensity(in.Density, s)}
	}

	if f := in.Finding; f != nil {
		if f.Type != "" {
			s, ok := findingTypeScores[f.Type]
			if !ok {
				s = findingTypeDefaultScore
			}
			factors[FactorFindingType] = Factor{
				Score:       s,
				Description: fmt.Sprintf("finding type %q (sub-score %d/5)", f.Type, s),
			}
		}
		if f.SizeMm > 0 {
			s := sizeScore(f.SizeMm)
			factors[FactorSize] = Factor{Score: s, Description: describeSize(f.SizeMm, s)}
		}
		if f.Location != "" {
			s, ok := locationScores[f.Location]
			if !ok {
				s = locationDefaultScore
			}
			factors[FactorLocation] = Factor{
				Score:       s,
				Description: fmt.Sprintf("location %q (sub-score %d/5)", f.Location, s),
			}
		}
		if s, ok := conspicuityScores[f.Conspicuity]; ok {
			factors[FactorConspicuity] = Factor{
				Score:       s,
				Description: fmt.Sprintf("conspicuity %s (sub-score %d/5)", f.Conspicuity, s),
			}
		}
	}

	if d := in.Distractors; d != nil {
		s := distractorScore(d.Count)
		factors[FactorDistractors] = Factor{
			Score:       s,
			Description: fmt.Sprintf("%d distracting benign feature(s) (sub-score %d/5)", d.Count, s),
		}
	}

	if p := in.Prior; p != nil {
		s := priorNoneScore
		desc := "no prior imaging available for comparison"
		if p.Available {
			if p.YearsAgo <= priorRecentYears {
				s = priorRecentScore
			} else {
				s = priorOldScore
			}
			desc = fmt.Sprintf("prior imaging available, %.1f year(s) old", p.YearsAgo)
		}
		factors[FactorPrior] = Factor{
			Score:       s,
			Description: fmt.Sprintf("%s (sub-score %d/5)", desc, s),
		}
	}

	if n := len(in.TechnicalIssues); n > 0 {
		s := technicalScore(n)
		factors[FactorTechnical] = Factor{
			Score:       s,
			Description: fmt.Sprintf("%d technical quality issue(s): %s (sub-score %d/5)", n, strings.Join(in.TechnicalIssues, ", "), s),
		}
	}

	composite := 50 // midpoint default when nothing is known about the case
	if len(factors) > 0 {
		sum := 0
		for _, f := range factors {
			sum += f.Score
		}
		mean := float64(sum) / float64(len(factors))
		composite = int(math.Round(mean / 5 * 100))
	}
	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}

	percentile := float64(composite)
	if in.Percentile != nil {
		percentile = *in.Percentile
	}

	level := levelFor(composite)

	return Index{
		CompositeScore:    composite,
		Percentile:        percentile,
		Level:             level,
		ReviewerAgreement: reviewerAgreementFor(composite),
		Factors:           factors,
		ScientificBasis:   scientificBasis(in, factors),
		ExpectedMissRate:  missRateStatements[level],
	}
}

// missRateStatements are fixed, citation-backed statements selected purely
// by difficulty level so identical inputs always yield identical text.
var missRateStatements = map[Level]string{
	LevelLow:      "Findings in low-difficulty cases are detected by experienced readers in over 95% of reads (Bird et al., Radiology 1992).",
	LevelModerate: "Findings at moderate difficulty are missed by experienced readers in roughly 10-20% of reads (Bird et al., Radiology 1992).",
	LevelHigh:     "Findings at high difficulty are missed by experienced readers in roughly 30-50% of reads, even under ideal conditions (Bird et al., Radiology 1992; Majid et al., RadioGraphics 2003).",
	LevelVeryHigh: "Findings at very high difficulty are missed by a majority of experienced readers; retrospective visibility does not imply prospective detectability (Harvey et al., AJR 1993).",
}

// basisSentences are the fixed sentences contributing to the scientific
// basis narrative. Each fires on a factor-table condition, never freeform.
var basisSentences = []struct {
	applies  func(Input, map[string]Factor) bool
	sentence string
}{
	{
		func(in Input, _ map[string]Factor) bool { return in.Density == "C" || in.Density == "D" },
		"Dense parenchyma substantially reduces mammographic sensitivity, from ~87% in fatty breasts to ~63% in extremely dense breasts (Kolb et al., Radiology 2002).",
	},
	{
		func(in Input, _ map[string]Factor) bool {
			return in.Finding != nil && strings.Contains(in.Finding.Type, "architectural_distortion")
		},
		"Architectural distortion is the most commonly missed mammographic abnormality, accounting for 12-45% of missed breast cancers (Majid et al., RadioGraphics 2003).",
	},
	{
		func(in Input, f map[string]Factor) bool {
			fa, ok := f[FactorSize]
			return ok && fa.Score >= 4
		},
		"Small lesion size is an independent predictor of missed diagnosis; sub-centimetre findings fall near the threshold of reliable perception (Burrell et al., Radiology 1996).",
	},
	{
		func(in Input, _ map[string]Factor) bool {
			return in.Finding != nil && in.Finding.Conspicuity.Subtle()
		},
		"Low-conspicuity findings produce weak pre-attentive signals and depend on foveal scrutiny of the correct region (Kundel & Nodine, Radiology 1975).",
	},
	{
		func(in Input, _ map[string]Factor) bool { return in.Distractors != nil && in.Distractors.Count > 0 },
		"Competing benign features increase search burden and are a recognized contributor to satisfaction-of-search effects (Berbaum et al., Invest Radiol 1990).",
	},
	{
		func(in Input, f map[string]Factor) bool {
			fa, ok := f[FactorPrior]
			return ok && fa.Score >= priorNoneScore
		},
		"Absence of prior imaging removes the change-detection cue that drives a large fraction of screening detections (Roelofs et al., Radiology 2007).",
	},
	{
		func(in Input, _ map[string]Factor) bool { return len(in.TechnicalIssues) > 0 },
		"Technical image-quality deficiencies independently degrade detection performance and are an accepted mitigating factor in peer review (Taplin et al., AJR 2002).",
	},
}

func scientificBasis(in Input, factors map[string]Factor) string {
	if len(factors) == 0 {
		return "No case attributes were supplied; the index defaults to the population midpoint."
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("The composite index aggregates %d scored factor(s), each mapped through a fixed 1-5 rubric.", len(factors)))
	for _, s := range basisSentences {
		if s.applies(in, factors) {
			parts = append(parts, s.sentence)
		}
	}
	return strings.Join(parts, " ")
}

// FactorNames returns the factor keys in deterministic order, for rendering.
func (idx Index) FactorNames() []string {
	names := make([]string, 0, len(idx.Factors))
	for name := range idx.Factors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
