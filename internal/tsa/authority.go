package tsa

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/digitorus/timestamp"
)

// Authority issues RFC 3161 timestamp tokens over chain hashes.
type Authority struct {
	config        *Config
	serialCounter uint64
	mu            sync.RWMutex
}

// NewAuthority creates an authority with the given configuration.
func NewAuthority(config *Config) (*Authority, error) {
	if config == nil {
		config = DefaultConfig()
	}

	return &Authority{
		config:        config,
		serialCounter: uint64(time.Now().UnixNano()),
	}, nil
}

// NewAuthorityWithGeneratedCert creates an authority with a self-signed
// certificate. Suitable for development and single-site deployments; a
// multi-site deployment should use PKI-issued certificates.
func NewAuthorityWithGeneratedCert(authorityName string) (*Authority, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	// Timestamp Authority extended key usage OID
	tsaExtKeyUsage := asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 8}

	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization:       []string{authorityName},
			OrganizationalUnit: []string{"Time Stamping Authority"},
			CommonName:         fmt.Sprintf("%s TSA", authorityName),
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
		UnknownExtKeyUsage:    []asn1.ObjectIdentifier{tsaExtKeyUsage},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	config := DefaultConfig()
	config.AuthorityName = authorityName
	config.Certificate = cert
	config.CertificateChain = []*x509.Certificate{cert}
	config.PrivateKey = privateKey

	return NewAuthority(config)
}

// NewAuthorityFromFiles creates an authority from a PEM certificate and key
// pair on disk, as issued by the deployment's PKI.
func NewAuthorityFromFiles(authorityName, certPath, keyPath string) (*Authority, error) {
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load TSA key pair: %w", err)
	}

	cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse TSA certificate: %w", err)
	}

	signer, ok := pair.PrivateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("TSA private key does not implement crypto.Signer")
	}

	config := DefaultConfig()
	config.AuthorityName = authorityName
	config.Certificate = cert
	config.CertificateChain = []*x509.Certificate{cert}
	config.PrivateKey = signer

	return NewAuthority(config)
}

// Token is the result of one attestation.
type Token struct {
	SerialNumber  uint64    `json:"serial_number"`
	Timestamp     time.Time `json:"timestamp"`
	HashAlgorithm string    `json:"hash_algorithm"`
	HashedMessage string    `json:"hashed_message"`
	Token         []byte    `json:"token"`
	PolicyOID     string    `json:"policy_oid"`
	Issuer        string    `json:"issuer"`
}

// Attest issues a timestamp token for the given hash.
func (a *Authority) Attest(ctx context.Context, dataHash []byte) (*Token, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.config.Enabled {
		return nil, fmt.Errorf("attestation is not enabled")
	}
	if a.config.Certificate == nil || a.config.PrivateKey == nil {
		return nil, fmt.Errorf("authority certificate or private key not configured")
	}

	serial := atomic.AddUint64(&a.serialCounter, 1)

	// A trusted NTP source should feed this clock in production.
	now := time.Now().UTC()

	token, err := a.buildToken(dataHash, now, serial)
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp token: %w", err)
	}

	return &Token{
		SerialNumber:  serial,
		Timestamp:     now,
		HashAlgorithm: a.config.HashAlgorithm.String(),
		HashedMessage: hex.EncodeToString(dataHash),
		Token:         token,
		PolicyOID:     a.config.PolicyOID,
		Issuer:        a.config.Certificate.Subject.CommonName,
	}, nil
}

// AttestHash issues a token for a hex-encoded hash string, as stored in the
// session ledger.
func (a *Authority) AttestHash(ctx context.Context, hashHex string) (*Token, error) {
	hashBytes, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hash hex: %w", err)
	}
	return a.Attest(ctx, hashBytes)
}

// VerifyResult is the outcome of token verification.
type VerifyResult struct {
	Valid        bool      `json:"valid"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
	SerialNumber uint64    `json:"serial_number,omitempty"`
	Issuer       string    `json:"issuer,omitempty"`
}

// Verify checks a token against the hash it claims to attest.
func (a *Authority) Verify(ctx context.Context, token []byte, originalHash []byte) (*VerifyResult, error) {
	ts, err := timestamp.Parse(token)
	if err != nil {
		return &VerifyResult{
			Valid:   false,
			Message: fmt.Sprintf("failed to parse timestamp token: %v", err),
		}, nil
	}

	if len(ts.HashedMessage) != len(originalHash) ||
		subtle.ConstantTimeCompare(ts.HashedMessage, originalHash) != 1 {
		return &VerifyResult{
			Valid:   false,
			Message: "hash mismatch: timestamp was created for different data",
		}, nil
	}

	return &VerifyResult{
		Valid:        true,
		Message:      "timestamp verified",
		Timestamp:    ts.Time,
		SerialNumber: ts.SerialNumber.Uint64(),
		Issuer:       a.config.Certificate.Subject.CommonName,
	}, nil
}

// Name returns the configured authority name.
func (a *Authority) Name() string {
	return a.config.AuthorityName
}

// Certificate returns the signing certificate.
func (a *Authority) Certificate() *x509.Certificate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Certificate
}

// buildToken assembles and signs the RFC 3161 structure.
func (a *Authority) buildToken(hashedMessage []byte, now time.Time, serial uint64) ([]byte, error) {
	tsInfo := tstInfo{
		Version: 1,
		Policy:  asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 2, 1},
		MessageImprint: messageImprint{
			HashAlgorithm: pkix.AlgorithmIdentifier{
				Algorithm: asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}, // SHA-256
			},
			HashedMessage: hashedMessage,
		},
		SerialNumber: big.NewInt(int64(serial)),
		GenTime:      now,
		Accuracy:     accuracy{Seconds: a.config.AccuracySeconds},
	}

	tstInfoDER, err := asn1.Marshal(tsInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TSTInfo: %w", err)
	}

	digest := sha256.Sum256(tstInfoDER)
	signature, err := a.config.PrivateKey.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to sign timestamp: %w", err)
	}

	response := signedToken{
		TSTInfo:     tstInfoDER,
		Signature:   signature,
		Certificate: a.config.Certificate.Raw,
	}

	responseDER, err := asn1.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}
	return responseDER, nil
}

// ASN.1 structures for RFC 3161

type tstInfo struct {
	Version        int
	Policy         asn1.ObjectIdentifier
	MessageImprint messageImprint
	SerialNumber   *big.Int
	GenTime        time.Time
	Accuracy       accuracy `asn1:"optional"`
	Ordering       bool     `asn1:"optional,default:false"`
	Nonce          *big.Int `asn1:"optional"`
}

type messageImprint struct {
	HashAlgorithm pkix.AlgorithmIdentifier
	HashedMessage []byte
}

type accuracy struct {
	Seconds int `asn1:"optional"`
	Millis  int `asn1:"optional,tag:0"`
	Micros  int `asn1:"optional,tag:1"`
}

type signedToken struct {
	TSTInfo     []byte
	Signature   []byte
	Certificate []byte `asn1:"optional"`
}
