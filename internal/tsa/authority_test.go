package tsa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func testAuthority(t *testing.T) *Authority {
	t.Helper()
	a, err := NewAuthorityWithGeneratedCert("test-authority")
	if err != nil {
		t.Fatalf("NewAuthorityWithGeneratedCert failed: %v", err)
	}
	return a
}

// TestAttestHash tests token issuance for a ledger chain hash
func TestAttestHash(t *testing.T) {
	a := testAuthority(t)

	sum := sha256.Sum256([]byte("chain tail"))
	hashHex := hex.EncodeToString(sum[:])

	token, err := a.AttestHash(context.Background(), hashHex)
	if err != nil {
		t.Fatalf("AttestHash failed: %v", err)
	}

	if token.HashedMessage != hashHex {
		t.Errorf("Token hash %s does not match input %s", token.HashedMessage, hashHex)
	}
	if len(token.Token) == 0 {
		t.Error("Expected a non-empty DER token")
	}
	if token.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
	if token.Issuer != "test-authority TSA" {
		t.Errorf("Unexpected issuer %q", token.Issuer)
	}
}

// TestSerialNumbersMonotonic tests that consecutive tokens never share a
// serial number
func TestSerialNumbersMonotonic(t *testing.T) {
	a := testAuthority(t)
	sum := sha256.Sum256([]byte("x"))

	t1, err := a.Attest(context.Background(), sum[:])
	if err != nil {
		t.Fatalf("Attest failed: %v", err)
	}
	t2, err := a.Attest(context.Background(), sum[:])
	if err != nil {
		t.Fatalf("Attest failed: %v", err)
	}

	if t2.SerialNumber <= t1.SerialNumber {
		t.Errorf("Serials must increase: %d then %d", t1.SerialNumber, t2.SerialNumber)
	}
}

// TestAttestRejectsBadHex tests input validation
func TestAttestRejectsBadHex(t *testing.T) {
	a := testAuthority(t)

	if _, err := a.AttestHash(context.Background(), "not-hex"); err == nil {
		t.Fatal("Expected error for invalid hex")
	}
}

// TestAttestDisabled tests that a disabled authority refuses to issue
func TestAttestDisabled(t *testing.T) {
	a := testAuthority(t)
	a.config.Enabled = false

	sum := sha256.Sum256([]byte("x"))
	if _, err := a.Attest(context.Background(), sum[:]); err == nil {
		t.Fatal("Expected error from a disabled authority")
	}
}

// TestVerifyRejectsGarbage tests that verification degrades to an invalid
// result instead of an error
func TestVerifyRejectsGarbage(t *testing.T) {
	a := testAuthority(t)

	result, err := a.Verify(context.Background(), []byte("not a token"), []byte("hash"))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if result.Valid {
		t.Error("Garbage token must not verify")
	}
}

// TestCheckpointChain tests attestor checkpoint production and its
// failure tolerance
func TestCheckpointChain(t *testing.T) {
	a := testAuthority(t)
	attestor := NewAttestor(a)

	sum := sha256.Sum256([]byte("final"))
	cp := attestor.Checkpoint(context.Background(), hex.EncodeToString(sum[:]))
	if cp == nil {
		t.Fatal("Expected a checkpoint")
	}
	if cp.Authority != "test-authority" || cp.SerialNumber == 0 {
		t.Errorf("Unexpected checkpoint %+v", cp)
	}

	// Disabled authority: no checkpoint, no panic.
	a.config.Enabled = false
	if cp := attestor.Checkpoint(context.Background(), hex.EncodeToString(sum[:])); cp != nil {
		t.Error("Disabled authority must yield no checkpoint")
	}
}
