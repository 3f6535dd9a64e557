package packet

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Anonymizer converts clinician identifiers into stable one-way pseudonyms
// using HMAC-SHA256 with a deployment-specific key. The same clinician
// always maps to the same pseudonym within a deployment, so packets remain
// joinable for workload analysis without exposing the raw identifier.
type Anonymizer struct {
	key []byte
}

// NewAnonymizer creates an anonymizer. The key should come from the
// deployment's key management; an empty key is rejected at config load.
func NewAnonymizer(key []byte) *Anonymizer {
	return &Anonymizer{key: key}
}

// Pseudonym returns the one-way pseudonym for a clinician id, formatted
// "CLN-" + first 16 hex characters of the MAC.
func (a *Anonymizer) Pseudonym(clinicianID string) string {
	mac := hmac.New(sha256.New, a.key)
	mac.Write([]byte("clinician:" + clinicianID))
	return "CLN-" + hex.EncodeToString(mac.Sum(nil))[:16]
}
