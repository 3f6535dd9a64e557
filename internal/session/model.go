package session

import (
	"time"
)

// Snapshot is the immutable record of one completed reading session as
// captured by the calling application. The pipeline only reads it; it is
// never mutated or persisted here.
type Snapshot struct {
	CaseID      string `json:"case_id"`
	SessionID   string `json:"session_id"`
	ClinicianID string `json:"clinician_id"`

	Initial Assessment `json:"initial_assessment"`
	Final   Assessment `json:"final_assessment"`

	AI        *AIResult  `json:"ai_result,omitempty"`
	Deviation *Deviation `json:"deviation,omitempty"`

	Events []Event         `json:"events,omitempty"`
	Chain  ChainDescriptor `json:"chain"`
}

// Assessment captures one locked clinical impression.
type Assessment struct {
	Value       string    `json:"value"`
	Positive    bool      `json:"positive"`
	Confidence  int       `json:"confidence"`
	Timestamp   time.Time `json:"timestamp"`
	ContentHash string    `json:"content_hash,omitempty"`
}

// AIResult describes the AI assistance shown to the clinician after the
// initial assessment was locked.
type AIResult struct {
	Score      float64     `json:"score"`
	Flagged    bool        `json:"flagged"`
	RevealedAt time.Time   `json:"revealed_at"`
	Findings   []AIFinding `json:"findings,omitempty"`
}

// AIFinding is one structured finding reported by the AI.
type AIFinding struct {
	RegionID    string  `json:"region_id"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Deviation records a documented disagreement with the AI result.
type Deviation struct {
	Documented  bool      `json:"documented"`
	ReasonCodes []string  `json:"reason_codes,omitempty"`
	Rationale   string    `json:"rationale,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event is one entry of the session's raw event log. Hashing and chain
// maintenance are the ledger's job; the pipeline treats these as opaque.
type Event struct {
	Sequence  int64     `json:"sequence"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Hash      string    `json:"hash,omitempty"`
}

// ChainDescriptor summarizes the hash chain state as computed and verified
// by the event ledger. The pipeline trusts Verified and never rehashes.
type ChainDescriptor struct {
	GenesisHash string `json:"genesis_hash"`
	FinalHash   string `json:"final_hash"`
	EntryCount  int    `json:"entry_count"`
	Verified    bool   `json:"verified"`
}

// AttestationCheckpoint is a third-party timestamp binding a chain hash to a
// point in time, produced by a TSA before the pipeline runs.
type AttestationCheckpoint struct {
	CheckpointHash string    `json:"checkpoint_hash"`
	SerialNumber   uint64    `json:"serial_number"`
	AttestedAt     time.Time `json:"attested_at"`
	Authority      string    `json:"authority,omitempty"`
	Token          []byte    `json:"token,omitempty"`
}

// DeviationRequired reports whether the session called for a documented
// deviation: the AI flagged the case and the clinician's final assessment
// disagreed, or vice versa.
func (s *Snapshot) DeviationRequired() bool {
	if s.AI == nil {
		return false
	}
	return s.AI.Flagged != s.Final.Positive
}

// AIRevealDelay returns the time between locking the initial assessment and
// the AI reveal. Negative values indicate the reveal preceded the lock,
// which is a workflow violation.
func (s *Snapshot) AIRevealDelay() (time.Duration, bool) {
	if s.AI == nil {
		return 0, false
	}
	return s.AI.RevealedAt.Sub(s.Initial.Timestamp), true
}
