package tsa

import (
	"context"
	"log"

	"github.com/evidify/platform/internal/session"
	"github.com/evidify/platform/internal/shared/metrics"
)

// Attestor turns chain hashes into attestation checkpoints for the packet
// pipeline. Attestation is failure-tolerant: a down or misconfigured
// authority degrades the packet's attestation summary, it never blocks
// packet generation.
type Attestor struct {
	authority *Authority
}

// NewAttestor creates an attestor over the given authority.
func NewAttestor(authority *Authority) *Attestor {
	return &Attestor{authority: authority}
}

// Checkpoint attests a single chain hash. Returns nil when attestation is
// unavailable.
func (a *Attestor) Checkpoint(ctx context.Context, chainHash string) *session.AttestationCheckpoint {
	token, err := a.authority.AttestHash(ctx, chainHash)
	metrics.RecordAttestation(a.authority.Name(), err == nil)
	if err != nil {
		log.Printf("attestation failed for hash %s: %v", chainHash, err)
		return nil
	}

	return &session.AttestationCheckpoint{
		CheckpointHash: chainHash,
		SerialNumber:   token.SerialNumber,
		AttestedAt:     token.Timestamp,
		Authority:      a.authority.Name(),
		Token:          token.Token,
	}
}

// CheckpointChain attests the final hash of a verified chain descriptor.
// An empty final hash (no entries yet) yields no checkpoint.
func (a *Attestor) CheckpointChain(ctx context.Context, chain session.ChainDescriptor) []session.AttestationCheckpoint {
	if chain.FinalHash == "" {
		return nil
	}

	cp := a.Checkpoint(ctx, chain.FinalHash)
	if cp == nil {
		return nil
	}
	return []session.AttestationCheckpoint{*cp}
}
