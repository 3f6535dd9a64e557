package errclass

import "math"

// Decision-tree constants. These are fixed: the tree is evaluated top to
// bottom and the first matching branch wins.
const (
	// MinViewingMs is the minimum dwell below which a region is treated as
	// effectively unexamined.
	MinViewingMs = 200

	zoomExaminedThreshold  = 1.5
	recognitionDwellMs     = 1000
	prevalenceDwellMs      = 2 * MinViewingMs
	prevalenceEmitAbove    = 60
	searchConfidenceCap    = 95
	sosConfidenceCap       = 90
	recognitionCap         = 95
	decisionConfidence     = 90
	highCoverageThreshold  = 90
)

// Classify evaluates the decision tree once. The result always carries
// exactly one of the six types; when no abnormality existed or the final
// assessment caught it, the type is NO_ERROR.
func Classify(in Input) Classification {
	ev := buildEvidence(in)

	// Branch 1: nothing was missed.
	if !in.Truth.Abnormal || in.FinalFlagged {
		return narrate(Classification{Type: NoError, Confidence: 100, Evidence: ev}, ev)
	}

	// Branch 2: the finding's region was never meaningfully examined.
	if !ev.RegionVisited || ev.DwellMs < MinViewingMs {
		if in.OtherFindingsNoted > 0 {
			conf := 60 + 10*in.OtherFindingsNoted
			if conf > sosConfidenceCap {
				conf = sosConfidenceCap
			}
			return narrate(Classification{Type: SatisfactionOfSearch, Confidence: conf, Evidence: ev}, ev)
		}
		// Confidence scales with how little attention the region received.
		attended := math.Min(ev.DwellMs, MinViewingMs) / MinViewingMs
		conf := 70 + int(math.Round(25*(1-attended)))
		if conf > searchConfidenceCap {
			conf = searchConfidenceCap
		}
		return narrate(Classification{Type: SearchError, Confidence: conf, Evidence: ev}, ev)
	}

	// Branch 3: seen and flagged initially, dropped before lock.
	if in.InitialFlagged && !in.FinalFlagged {
		return narrate(Classification{Type: DecisionError, Confidence: decisionConfidence, Evidence: ev}, ev)
	}

	// Branch 4: low-prevalence context with a subtle finding. Only emitted
	// when the computed confidence clears the bar; otherwise fall through.
	if in.Prevalence == PrevalenceLow && in.Truth.Conspicuity.Subtle() {
		conf := 50
		if ev.DwellMs >= prevalenceDwellMs {
			conf += 10
		}
		if ev.MaxZoom > zoomExaminedThreshold {
			conf += 10
		}
		if conf > prevalenceEmitAbove {
			return narrate(Classification{Type: PrevalenceEffect, Confidence: conf, Evidence: ev}, ev)
		}
	}

	// Default: the region was examined but the finding was not recognized.
	conf := 60
	if ev.DwellMs >= recognitionDwellMs {
		conf += 10
	}
	if ev.MaxZoom > zoomExaminedThreshold {
		conf += 10
	}
	if ev.VisitCount >= 2 {
		conf += 10
	}
	if in.Truth.Conspicuity.Subtle() {
		conf += 5
	}
	if conf > recognitionCap {
		conf = recognitionCap
	}
	return narrate(Classification{Type: RecognitionError, Confidence: conf, Evidence: ev}, ev)
}

func buildEvidence(in Input) Evidence {
	ev := Evidence{
		CoveragePercent:    in.Attention.CoveragePercent,
		OtherFindingsNoted: in.OtherFindingsNoted,
		InitialFlagged:     in.InitialFlagged,
		FinalFlagged:       in.FinalFlagged,
	}
	if r := in.Attention.FindingRegion; r != nil {
		ev.RegionVisited = r.Visited
		ev.DwellMs = r.DwellMs
		ev.MaxZoom = r.MaxZoom
		ev.VisitCount = r.VisitCount
	}
	return ev
}
