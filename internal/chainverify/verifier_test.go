package chainverify

import (
	"testing"
	"time"

	"github.com/evidify/platform/internal/session"
)

// TestVerifyIntactChain tests the VERIFIED path with canonical genesis
func TestVerifyIntactChain(t *testing.T) {
	v := Verify(session.ChainDescriptor{
		GenesisHash: CanonicalGenesis,
		FinalHash:   "ab12",
		EntryCount:  240,
		Verified:    true,
	}, nil)

	if v.Status != StatusVerified {
		t.Errorf("Expected VERIFIED, got %s", v.Status)
	}
	if v.ChainIntegrity != IntegrityIntact {
		t.Errorf("Expected INTACT, got %s", v.ChainIntegrity)
	}
	if !v.GenesisVerified || !v.FinalVerified {
		t.Error("Expected genesis and final verified")
	}
	if v.TamperingDetected {
		t.Error("No tampering on a verified chain")
	}
}

// TestVerifyInvalidChain tests tampering detection when the ledger reports
// a failed verification
func TestVerifyInvalidChain(t *testing.T) {
	v := Verify(session.ChainDescriptor{
		GenesisHash: CanonicalGenesis,
		FinalHash:   "ab12",
		EntryCount:  100,
		Verified:    false,
	}, nil)

	if v.Status != StatusInvalid {
		t.Errorf("Expected INVALID, got %s", v.Status)
	}
	if !v.TamperingDetected {
		t.Error("Failed verification with entries must flag tampering")
	}
}

// TestVerifyEmptyChain tests the PARTIAL status for a chain with no entries
func TestVerifyEmptyChain(t *testing.T) {
	v := Verify(session.ChainDescriptor{}, nil)

	if v.Status != StatusPartial {
		t.Errorf("Expected PARTIAL, got %s", v.Status)
	}
	if v.ChainIntegrity != IntegrityEmpty {
		t.Errorf("Expected EMPTY, got %s", v.ChainIntegrity)
	}
	if v.TamperingDetected {
		t.Error("An empty chain is not evidence of tampering")
	}
}

// TestNonCanonicalGenesis tests that a non-zero genesis hash is reported
func TestNonCanonicalGenesis(t *testing.T) {
	v := Verify(session.ChainDescriptor{
		GenesisHash: "ff00000000000000000000000000000000000000000000000000000000000000",
		FinalHash:   "ab12",
		EntryCount:  5,
		Verified:    true,
	}, nil)

	if v.GenesisVerified {
		t.Error("Non-canonical genesis must not verify")
	}
	if v.Status != StatusVerified {
		t.Error("Genesis mismatch alone does not override the ledger verdict")
	}
}

// TestAttestationSummary tests checkpoint aggregation and the binary
// coverage simplification
func TestAttestationSummary(t *testing.T) {
	t1 := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(30 * time.Minute)
	t3 := t1.Add(-10 * time.Minute)

	v := Verify(session.ChainDescriptor{EntryCount: 10, Verified: true, FinalHash: "ab"}, []session.AttestationCheckpoint{
		{CheckpointHash: "c1", AttestedAt: t1},
		{CheckpointHash: "c2", AttestedAt: t2},
		{CheckpointHash: "c3", AttestedAt: t3},
	})

	a := v.Attestation
	if a.CheckpointCount != 3 {
		t.Errorf("Expected 3 checkpoints, got %d", a.CheckpointCount)
	}
	if a.CoveragePercent != 100 {
		t.Errorf("Expected binary coverage 100, got %d", a.CoveragePercent)
	}
	if !a.EarliestAt.Equal(t3) || !a.LatestAt.Equal(t2) {
		t.Errorf("Wrong attestation bounds: %v .. %v", a.EarliestAt, a.LatestAt)
	}
}

// TestAttestationUnavailable tests the degraded zero summary
func TestAttestationUnavailable(t *testing.T) {
	v := Verify(session.ChainDescriptor{EntryCount: 10, Verified: true, FinalHash: "ab"}, nil)

	if v.Attestation.CheckpointCount != 0 || v.Attestation.CoveragePercent != 0 {
		t.Error("Missing attestation must degrade to zeros")
	}
	if !v.Attestation.EarliestAt.IsZero() {
		t.Error("Expected zero earliest timestamp")
	}
}
