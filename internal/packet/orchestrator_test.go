package packet

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/evidify/platform/internal/attention"
	"github.com/evidify/platform/internal/chainverify"
	"github.com/evidify/platform/internal/difficulty"
	"github.com/evidify/platform/internal/disclosure"
	"github.com/evidify/platform/internal/errclass"
	"github.com/evidify/platform/internal/session"
	"github.com/evidify/platform/internal/workload"
)

var (
	testKey   = []byte("test-anonymization-key")
	lockAt    = time.Date(2026, 3, 12, 9, 41, 0, 0, time.UTC)
	finalAt   = lockAt.Add(4 * time.Minute)
	generated = time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
)

func validSnapshot() session.Snapshot {
	return session.Snapshot{
		CaseID:      "case-0042",
		SessionID:   "sess-9001",
		ClinicianID: "dr.house@example.org",
		Initial: session.Assessment{
			Value: "BI-RADS 1", Positive: false, Confidence: 70,
			Timestamp: lockAt, ContentHash: "aa11",
		},
		Final: session.Assessment{
			Value: "BI-RADS 1", Positive: false, Confidence: 75,
			Timestamp: finalAt, ContentHash: "bb22",
		},
		AI: &session.AIResult{
			Score: 0.12, Flagged: false, RevealedAt: lockAt.Add(5 * time.Second),
		},
		Chain: session.ChainDescriptor{
			GenesisHash: chainverify.CanonicalGenesis,
			FinalHash:   "cc33",
			EntryCount:  187,
			Verified:    true,
		},
	}
}

func fullInput() GenerateInput {
	return GenerateInput{
		Snapshot: validSnapshot(),
		Difficulty: &difficulty.Input{
			Density: "D",
			Finding: &difficulty.Finding{
				Type: "subtle_architectural_distortion", SizeMm: 8,
				Location: "posterior", Conspicuity: difficulty.ConspicuitySubtle,
			},
			Distractors: &difficulty.Distractors{Count: 2},
			Prior:       &difficulty.PriorComparison{Available: true, YearsAgo: 2},
		},
		Telemetry: &attention.Telemetry{
			PreAssistMs: 42000, PostAssistMs: 8000, CoveragePercent: 92,
			Regions: []attention.RegionSample{
				{ID: "lcc_posterior", Name: "LCC posterior", DwellMs: 0, VisitCount: 0},
				{ID: "lcc_central", Name: "LCC central", DwellMs: 5200, MaxZoom: 2.1, VisitCount: 4},
			},
		},
		GroundTruth: &errclass.GroundTruth{
			Abnormal: true, RegionID: "lcc_posterior",
			Conspicuity: difficulty.ConspicuitySubtle,
		},
		Workload: &workload.Input{
			SessionStart: lockAt.Add(-128 * time.Minute), Now: finalAt,
			CasesCompleted: 34, TotalCases: 60, CurrentCaseIndex: 35,
		},
		Disclosure: &disclosure.Record{
			ExposureDurationMs: 12000,
			Comprehension:      &disclosure.ComprehensionCheck{Correct: true},
			AcknowledgedAt:     lockAt.Add(10 * time.Second),
		},
		Checkpoints: []session.AttestationCheckpoint{
			{CheckpointHash: "cc33", SerialNumber: 7, AttestedAt: finalAt.Add(time.Minute), Authority: "tsa.example.org"},
		},
		Prevalence: errclass.PrevalenceLow,
	}
}

func testGenerator() *Generator {
	return NewDeterministicGenerator(NewAnonymizer(testKey), generated, 0x5A)
}

// TestGenerateFullPacket tests the happy path across all engines
func TestGenerateFullPacket(t *testing.T) {
	p, err := testGenerator().Generate(fullInput())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(p.ID, "EWP-20260312-100000-") {
		t.Errorf("Unexpected packet id %q", p.ID)
	}
	if p.Difficulty.Level != difficulty.LevelHigh {
		t.Errorf("Expected HIGH difficulty, got %s", p.Difficulty.Level)
	}
	if p.Classification == nil || p.Classification.Type != errclass.SearchError {
		t.Fatalf("Expected SEARCH_ERROR classification, got %+v", p.Classification)
	}
	if p.Workload.ThresholdStatus != workload.StatusGreen {
		t.Errorf("Expected GREEN workload, got %s", p.Workload.ThresholdStatus)
	}
	if p.Disclosure.ComplianceLevel != disclosure.LevelFull {
		t.Errorf("Expected FULL disclosure, got %s", p.Disclosure.ComplianceLevel)
	}
	if p.Verification.Status != chainverify.StatusVerified {
		t.Errorf("Expected VERIFIED chain, got %s", p.Verification.Status)
	}
	if p.Compliance.Status != Compliant {
		t.Errorf("Expected COMPLIANT workflow, got %s", p.Compliance.Status)
	}
}

// TestGenerateDeterministic tests byte-identical packets for identical input
// under a fixed clock and random source
func TestGenerateDeterministic(t *testing.T) {
	p1, err := testGenerator().Generate(fullInput())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	p2, err := testGenerator().Generate(fullInput())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	b1, err := json.Marshal(p1)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b2, _ := json.Marshal(p2)

	if string(b1) != string(b2) {
		t.Error("Identical input must yield byte-identical packets")
	}
}

// TestGenerateRejectsInvalidSnapshot tests the fatal-input taxonomy: no
// packet is produced when required timestamps are missing
func TestGenerateRejectsInvalidSnapshot(t *testing.T) {
	in := fullInput()
	in.Snapshot.Initial.Timestamp = time.Time{}

	if _, err := testGenerator().Generate(in); err == nil {
		t.Fatal("Expected validation error for missing initial timestamp")
	}
}

// TestGenerateMinimalInput tests the all-defaults path: only a snapshot
func TestGenerateMinimalInput(t *testing.T) {
	p, err := testGenerator().Generate(GenerateInput{Snapshot: validSnapshot()})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if p.Difficulty.CompositeScore != 50 || p.Difficulty.Level != difficulty.LevelModerate {
		t.Errorf("Expected default CDI 50/MODERATE, got %d/%s", p.Difficulty.CompositeScore, p.Difficulty.Level)
	}
	if p.Classification != nil {
		t.Error("No ground truth: classification must be absent")
	}
	if p.Disclosure.ComplianceLevel != disclosure.LevelNone {
		t.Errorf("Expected NONE disclosure, got %s", p.Disclosure.ComplianceLevel)
	}
	if p.Attention.TotalViewingMs != 0 {
		t.Error("Expected zeroed attention summary")
	}
}

// TestClinicianAnonymized tests that the raw clinician id never appears in
// the serialized packet
func TestClinicianAnonymized(t *testing.T) {
	in := fullInput()
	p, err := testGenerator().Generate(in)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(p.ClinicianPseudonym, "CLN-") {
		t.Errorf("Unexpected pseudonym format %q", p.ClinicianPseudonym)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(raw), in.Snapshot.ClinicianID) {
		t.Error("Raw clinician id leaked into the exported packet")
	}

	// Stable across packets: same clinician, same pseudonym.
	p2, _ := testGenerator().Generate(in)
	if p2.ClinicianPseudonym != p.ClinicianPseudonym {
		t.Error("Pseudonym must be deterministic per clinician")
	}
}

// TestLiabilityRuleTable tests the factor-count thresholds
func TestLiabilityRuleTable(t *testing.T) {
	// Full input: high difficulty, green workload, verified chain, full
	// disclosure, zero aggravating -> LOW.
	p, err := testGenerator().Generate(fullInput())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if p.Executive.LiabilityLevel != LiabilityLow {
		t.Errorf("Expected LOW liability, got %s (mit=%v agg=%v)",
			p.Executive.LiabilityLevel, p.Executive.MitigatingFactors, p.Executive.AggravatingFactors)
	}

	// Two aggravating factors -> HIGH: red workload plus an undocumented
	// required deviation.
	in := fullInput()
	in.Workload.Now = in.Workload.SessionStart.Add(200 * time.Minute)
	in.Snapshot.AI.Flagged = true // final stays negative: deviation required
	in.Snapshot.Deviation = nil
	p, err = testGenerator().Generate(in)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(p.Executive.AggravatingFactors) != 2 {
		t.Fatalf("Expected 2 aggravating factors, got %v", p.Executive.AggravatingFactors)
	}
	if p.Executive.LiabilityLevel != LiabilityHigh {
		t.Errorf("Expected HIGH liability, got %s", p.Executive.LiabilityLevel)
	}
	if p.Compliance.Status != NonCompliant {
		t.Errorf("Undocumented required deviation must be NON_COMPLIANT, got %s", p.Compliance.Status)
	}
}

// TestComplianceNonCompliantOnChainFailure tests the chain-failure rule
func TestComplianceNonCompliantOnChainFailure(t *testing.T) {
	in := fullInput()
	in.Snapshot.Chain.Verified = false

	p, err := testGenerator().Generate(in)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if p.Compliance.Status != NonCompliant {
		t.Errorf("Expected NON_COMPLIANT, got %s", p.Compliance.Status)
	}
	if !p.Verification.TamperingDetected {
		t.Error("Expected tampering flag on a failed chain")
	}
}

// TestCompliancePartial tests the PARTIAL status for a missing content hash
func TestCompliancePartial(t *testing.T) {
	in := fullInput()
	in.Snapshot.Initial.ContentHash = ""

	p, err := testGenerator().Generate(in)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if p.Compliance.Status != Partial {
		t.Errorf("Expected PARTIAL, got %s", p.Compliance.Status)
	}
}

// TestExecutiveNarrativeConsistency tests that every number referenced in
// the narrative matches a structured field in the same packet
func TestExecutiveNarrativeConsistency(t *testing.T) {
	p, err := testGenerator().Generate(fullInput())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	n := p.Executive.Narrative
	for _, want := range []string{
		p.CaseID,
		string(p.Workload.ThresholdStatus),
		string(p.Difficulty.Level),
		string(p.Compliance.Status),
		string(p.Executive.LiabilityLevel),
	} {
		if !strings.Contains(n, want) {
			t.Errorf("Narrative missing %q", want)
		}
	}
	if p.Classification != nil && p.Classification.Type != errclass.NoError &&
		!strings.Contains(n, string(p.Classification.Type)) {
		t.Error("Narrative missing the error classification")
	}
}
