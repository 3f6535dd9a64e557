package errclass

import (
	"testing"

	"github.com/evidify/platform/internal/attention"
	"github.com/evidify/platform/internal/difficulty"
)

func summaryWithRegion(r *attention.Region, coverage float64) attention.Summary {
	s := attention.Summary{CoveragePercent: coverage, Regions: []attention.Region{}}
	if r != nil {
		s.Regions = append(s.Regions, *r)
		s.FindingRegion = r
	}
	return s
}

// TestNoErrorWhenTruthNegative tests branch 1: no abnormality existed
func TestNoErrorWhenTruthNegative(t *testing.T) {
	c := Classify(Input{Truth: GroundTruth{Abnormal: false}})

	if c.Type != NoError {
		t.Errorf("Expected NO_ERROR, got %s", c.Type)
	}
	if c.Confidence != 100 {
		t.Errorf("Expected confidence 100, got %d", c.Confidence)
	}
}

// TestNoErrorWhenFinalFlagged tests branch 1: the final assessment caught it
func TestNoErrorWhenFinalFlagged(t *testing.T) {
	c := Classify(Input{
		Truth:        GroundTruth{Abnormal: true, RegionID: "r1"},
		FinalFlagged: true,
	})

	if c.Type != NoError {
		t.Errorf("Expected NO_ERROR, got %s", c.Type)
	}
}

// TestSearchErrorNeverVisited tests the unvisited-region scenario with no
// other findings noted
func TestSearchErrorNeverVisited(t *testing.T) {
	c := Classify(Input{
		Truth:     GroundTruth{Abnormal: true, RegionID: "r1"},
		Attention: summaryWithRegion(&attention.Region{ID: "r1", Visited: false}, 70),
	})

	if c.Type != SearchError {
		t.Errorf("Expected SEARCH_ERROR, got %s", c.Type)
	}
	if c.Confidence < 85 {
		t.Errorf("Expected confidence >= 85 for never-visited region, got %d", c.Confidence)
	}
	if c.Confidence > 95 {
		t.Errorf("Confidence must be capped at 95, got %d", c.Confidence)
	}
	if c.LiabilityImplication != searchLiabilityLowCoverage {
		t.Error("Coverage below 90 must select the low-coverage liability text")
	}
}

// TestSearchErrorHighCoverageNarrative tests the coverage modulation of the
// SEARCH_ERROR liability paragraph
func TestSearchErrorHighCoverageNarrative(t *testing.T) {
	c := Classify(Input{
		Truth:     GroundTruth{Abnormal: true, RegionID: "r1"},
		Attention: summaryWithRegion(&attention.Region{ID: "r1", Visited: false}, 93),
	})

	if c.Type != SearchError {
		t.Fatalf("Expected SEARCH_ERROR, got %s", c.Type)
	}
	if c.LiabilityImplication != searchLiabilityHighCoverage {
		t.Error("Coverage >= 90 must select the high-coverage liability text")
	}
}

// TestSatisfactionOfSearch tests the SOS branch when other findings were noted
func TestSatisfactionOfSearch(t *testing.T) {
	c := Classify(Input{
		Truth:              GroundTruth{Abnormal: true, RegionID: "r1"},
		Attention:          summaryWithRegion(&attention.Region{ID: "r1", Visited: true, DwellMs: 50, VisitCount: 1}, 85),
		OtherFindingsNoted: 2,
	})

	if c.Type != SatisfactionOfSearch {
		t.Errorf("Expected SATISFACTION_OF_SEARCH, got %s", c.Type)
	}
	if c.Confidence != 80 {
		t.Errorf("Expected confidence 80 for 2 other findings, got %d", c.Confidence)
	}
}

// TestSatisfactionOfSearchCap tests the SOS confidence cap
func TestSatisfactionOfSearchCap(t *testing.T) {
	c := Classify(Input{
		Truth:              GroundTruth{Abnormal: true, RegionID: "r1"},
		Attention:          summaryWithRegion(&attention.Region{ID: "r1", Visited: false}, 85),
		OtherFindingsNoted: 7,
	})

	if c.Confidence != 90 {
		t.Errorf("Expected capped confidence 90, got %d", c.Confidence)
	}
}

// TestDecisionError tests branch 3: flagged initially, dropped at lock
func TestDecisionError(t *testing.T) {
	c := Classify(Input{
		Truth:          GroundTruth{Abnormal: true, RegionID: "r1"},
		Attention:      summaryWithRegion(&attention.Region{ID: "r1", Visited: true, DwellMs: 2500, VisitCount: 2}, 95),
		InitialFlagged: true,
	})

	if c.Type != DecisionError {
		t.Errorf("Expected DECISION_ERROR, got %s", c.Type)
	}
	if c.Confidence != 90 {
		t.Errorf("Expected fixed confidence 90, got %d", c.Confidence)
	}
}

// TestDecisionErrorBeatsPrevalence tests the top-to-bottom tie-break:
// PREVALENCE_EFFECT never overrides DECISION_ERROR
func TestDecisionErrorBeatsPrevalence(t *testing.T) {
	c := Classify(Input{
		Truth:          GroundTruth{Abnormal: true, RegionID: "r1", Conspicuity: difficulty.ConspicuitySubtle},
		Attention:      summaryWithRegion(&attention.Region{ID: "r1", Visited: true, DwellMs: 3000, MaxZoom: 2.0, VisitCount: 2}, 95),
		InitialFlagged: true,
		Prevalence:     PrevalenceLow,
	})

	if c.Type != DecisionError {
		t.Errorf("Expected DECISION_ERROR to win, got %s", c.Type)
	}
}

// TestPrevalenceEffectEmitted tests branch 4 when confidence clears the bar
func TestPrevalenceEffectEmitted(t *testing.T) {
	c := Classify(Input{
		Truth:      GroundTruth{Abnormal: true, RegionID: "r1", Conspicuity: difficulty.ConspicuitySubtle},
		Attention:  summaryWithRegion(&attention.Region{ID: "r1", Visited: true, DwellMs: 900, MaxZoom: 2.0, VisitCount: 1}, 95),
		Prevalence: PrevalenceLow,
	})

	if c.Type != PrevalenceEffect {
		t.Errorf("Expected PREVALENCE_EFFECT, got %s", c.Type)
	}
	if c.Confidence != 70 {
		t.Errorf("Expected confidence 70, got %d", c.Confidence)
	}
}

// TestPrevalenceFallsThroughToRecognition tests branch 4 falling through when
// the computed confidence does not exceed the emission threshold
func TestPrevalenceFallsThroughToRecognition(t *testing.T) {
	c := Classify(Input{
		Truth:      GroundTruth{Abnormal: true, RegionID: "r1", Conspicuity: difficulty.ConspicuitySubtle},
		Attention:  summaryWithRegion(&attention.Region{ID: "r1", Visited: true, DwellMs: 250, MaxZoom: 1.0, VisitCount: 1}, 95),
		Prevalence: PrevalenceLow,
	})

	if c.Type != RecognitionError {
		t.Errorf("Expected fall-through to RECOGNITION_ERROR, got %s", c.Type)
	}
}

// TestRecognitionErrorConfidence tests the default branch confidence build-up
func TestRecognitionErrorConfidence(t *testing.T) {
	c := Classify(Input{
		Truth:     GroundTruth{Abnormal: true, RegionID: "r1", Conspicuity: difficulty.ConspicuityModerate},
		Attention: summaryWithRegion(&attention.Region{ID: "r1", Visited: true, DwellMs: 1400, MaxZoom: 2.2, VisitCount: 3}, 95),
	})

	if c.Type != RecognitionError {
		t.Fatalf("Expected RECOGNITION_ERROR, got %s", c.Type)
	}
	// 60 + 10 (dwell) + 10 (zoom) + 10 (revisits) = 90, not subtle
	if c.Confidence != 90 {
		t.Errorf("Expected confidence 90, got %d", c.Confidence)
	}
}

// TestExactlyOneType fuzzes inputs and checks every result is one of the six
// enum values and never an error type for negative ground truth
func TestExactlyOneType(t *testing.T) {
	valid := map[Type]bool{
		SearchError: true, RecognitionError: true, DecisionError: true,
		SatisfactionOfSearch: true, PrevalenceEffect: true, NoError: true,
	}

	for seed := 0; seed < 200; seed++ {
		in := Input{
			Truth: GroundTruth{
				Abnormal:    seed%3 != 0,
				RegionID:    "r1",
				Conspicuity: []difficulty.Conspicuity{difficulty.ConspicuityObvious, difficulty.ConspicuitySubtle, difficulty.ConspicuityVerySubtle}[seed%3],
			},
			Attention: summaryWithRegion(&attention.Region{
				ID: "r1", Visited: seed%2 == 0,
				DwellMs: float64((seed * 37) % 3000), MaxZoom: float64(seed%4) * 0.8,
				VisitCount: seed % 5,
			}, float64((seed*13)%101)),
			InitialFlagged:     seed%5 == 0,
			FinalFlagged:       seed%7 == 0,
			OtherFindingsNoted: seed % 4,
			Prevalence:         []Prevalence{PrevalenceLow, PrevalenceNormal, PrevalenceHigh}[seed%3],
		}

		c := Classify(in)
		if !valid[c.Type] {
			t.Fatalf("Seed %d: unexpected type %s", seed, c.Type)
		}
		if !in.Truth.Abnormal && c.Type != NoError {
			t.Fatalf("Seed %d: negative ground truth must yield NO_ERROR, got %s", seed, c.Type)
		}
		if c.Confidence < 0 || c.Confidence > 100 {
			t.Fatalf("Seed %d: confidence %d out of range", seed, c.Confidence)
		}
		if c.ScientificContext == "" || c.LiabilityImplication == "" {
			t.Fatalf("Seed %d: missing narrative for %s", seed, c.Type)
		}
	}
}
