package disclosure

import (
	"testing"
	"time"
)

var (
	ackAt   = time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	finalAt = ackAt.Add(45 * time.Second)
)

// TestEvaluateNilRecordDefaults tests the fully-zeroed default for a missing
// disclosure record
func TestEvaluateNilRecordDefaults(t *testing.T) {
	s := Evaluate(nil, finalAt)

	if s.OverallScore != 0 {
		t.Errorf("Expected score 0, got %d", s.OverallScore)
	}
	if s.ComplianceLevel != LevelNone {
		t.Errorf("Expected NONE, got %s", s.ComplianceLevel)
	}
	for name, p := range map[string]Pillar{"accessible": s.Accessible, "intelligible": s.Intelligible, "usable": s.Usable, "assessable": s.Assessable} {
		if p.Met {
			t.Errorf("Pillar %s must not be met without a record", name)
		}
	}
}

// TestEvaluateFullCompliance tests the reference scenario: 12s exposure and
// a passed comprehension check yield all four pillars and FULL
func TestEvaluateFullCompliance(t *testing.T) {
	s := Evaluate(&Record{
		Format:             "modal",
		ExposureDurationMs: 12000,
		Comprehension:      &ComprehensionCheck{Question: "q", Answer: "a", Correct: true},
		AcknowledgedAt:     ackAt,
	}, finalAt)

	if s.OverallScore != 4 {
		t.Errorf("Expected score 4, got %d", s.OverallScore)
	}
	if s.ComplianceLevel != LevelFull {
		t.Errorf("Expected FULL, got %s", s.ComplianceLevel)
	}
	if s.Usable.Value != 45000 {
		t.Errorf("Expected usable latency 45000ms, got %.0f", s.Usable.Value)
	}
}

// TestAccessibleGate tests the 5000ms exposure floor
func TestAccessibleGate(t *testing.T) {
	short := Evaluate(&Record{ExposureDurationMs: 4999, AcknowledgedAt: ackAt}, finalAt)
	if short.Accessible.Met {
		t.Error("4999ms exposure must not meet the accessible pillar")
	}

	exact := Evaluate(&Record{ExposureDurationMs: 5000, AcknowledgedAt: ackAt}, finalAt)
	if !exact.Accessible.Met {
		t.Error("5000ms exposure must meet the accessible pillar")
	}
}

// TestIntelligibleRequiresCorrectAnswer tests the comprehension gate
func TestIntelligibleRequiresCorrectAnswer(t *testing.T) {
	wrong := Evaluate(&Record{
		ExposureDurationMs: 8000,
		Comprehension:      &ComprehensionCheck{Correct: false},
		AcknowledgedAt:     ackAt,
	}, finalAt)

	if wrong.Intelligible.Met {
		t.Error("Incorrect comprehension answer must not meet the pillar")
	}
	if wrong.OverallScore != 3 {
		t.Errorf("Expected score 3, got %d", wrong.OverallScore)
	}
	if wrong.ComplianceLevel != LevelSubstantial {
		t.Errorf("Expected SUBSTANTIAL, got %s", wrong.ComplianceLevel)
	}
}

// TestOverallScoreEqualsMetCount tests the aggregate invariant and the fixed
// level table across all pillar combinations reachable from record inputs
func TestOverallScoreEqualsMetCount(t *testing.T) {
	records := []*Record{
		{},
		{ExposureDurationMs: 9000},
		{Comprehension: &ComprehensionCheck{Correct: true}},
		{ExposureDurationMs: 9000, Comprehension: &ComprehensionCheck{Correct: true}, AcknowledgedAt: ackAt},
	}

	for i, rec := range records {
		s := Evaluate(rec, finalAt)

		met := 0
		for _, p := range []Pillar{s.Accessible, s.Intelligible, s.Usable, s.Assessable} {
			if p.Met {
				met++
			}
		}
		if s.OverallScore != met {
			t.Errorf("Record %d: overall %d != met count %d", i, s.OverallScore, met)
		}
		if s.ComplianceLevel != levelTable[met] {
			t.Errorf("Record %d: level %s does not match table for %d", i, s.ComplianceLevel, met)
		}
	}
}
