// Package tsa provides an internal RFC 3161 Time Stamping Authority used to
// attest session chain hashes. An internal authority keeps attestation
// available in air-gapped clinical deployments; the token format stays
// standard so an external authority can be swapped in.
package tsa

import (
	"crypto"
	"crypto/x509"
)

// Config holds authority configuration.
type Config struct {
	// Enabled controls whether attestation is active.
	Enabled bool

	// AuthorityName identifies the issuer in checkpoints.
	AuthorityName string

	// PolicyOID identifies the policy under which timestamps are issued.
	PolicyOID string

	// Certificate is the signing certificate.
	Certificate *x509.Certificate

	// CertificateChain is the full chain for verification.
	CertificateChain []*x509.Certificate

	// PrivateKey signs tokens. In production this should come from an HSM.
	PrivateKey crypto.Signer

	// HashAlgorithm for timestamp tokens (default SHA-256).
	HashAlgorithm crypto.Hash

	// AccuracySeconds is the claimed accuracy of issued timestamps.
	AccuracySeconds int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		AuthorityName:   "evidify-internal",
		PolicyOID:       "1.3.6.1.4.1.99999.2.1",
		HashAlgorithm:   crypto.SHA256,
		AccuracySeconds: 1,
	}
}
