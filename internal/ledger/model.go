// Package ledger is the append-only session event record. Every workflow
// event of a diagnostic session is chained by SHA-256 over canonical JSON,
// so the packet pipeline can later prove the record was not edited.
package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Genesis is the all-zero hash the first entry of every session chains from.
const Genesis = "0000000000000000000000000000000000000000000000000000000000000000"

// Workflow event types. The locked-before-reveal ordering of
// EventAssessmentLocked and EventAIRevealed is what the packet's workflow
// checks are built on.
const (
	EventSessionStarted      = "session.started"
	EventCaseOpened          = "case.opened"
	EventAssessmentLocked    = "assessment.locked"
	EventDisclosureShown     = "disclosure.shown"
	EventAIRevealed          = "ai.revealed"
	EventDeviationDocumented = "deviation.documented"
	EventAssessmentFinalized = "assessment.finalized"
	EventCaseCompleted       = "case.completed"
	EventBreakStarted        = "break.started"
	EventBreakEnded          = "break.ended"
	EventSessionEnded        = "session.ended"
)

// Entry is one immutable link of a session chain.
type Entry struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Sequence  int64          `json:"sequence"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Hash      string         `json:"hash"`
	PrevHash  string         `json:"prev_hash"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEntry builds and hashes a chain entry. The caller supplies sequence and
// prevHash; the ledger serializes appends per session so both are unambiguous.
func NewEntry(sessionID, eventType string, payload map[string]any, sequence int64, prevHash string, at time.Time) *Entry {
	e := &Entry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sequence:  sequence,
		Timestamp: at.UTC().Truncate(time.Microsecond),
		Type:      eventType,
		PrevHash:  prevHash,
		Payload:   payload,
	}
	e.Hash = e.computeHash()
	return e
}

// computeHash hashes the entry content over canonical JSON. The timestamp is
// normalized to UTC RFC 3339 so the hash survives timezone round-trips, and
// microsecond truncation so it survives the database.
func (e *Entry) computeHash() string {
	fields := map[string]any{
		"id":         e.ID,
		"session_id": e.SessionID,
		"sequence":   e.Sequence,
		"timestamp":  e.Timestamp.UTC().Format(time.RFC3339Nano),
		"type":       e.Type,
		"prev_hash":  e.PrevHash,
	}
	if len(e.Payload) > 0 {
		fields["payload"] = e.Payload
	}

	canonical, _ := canonicalJSON(fields)
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// VerifyHash reports whether the stored hash matches the entry content.
func (e *Entry) VerifyHash() bool {
	return e.Hash == e.computeHash()
}

// canonicalJSON renders v as JSON with object keys sorted at every level.
// Go maps iterate in random order and JSONB storage may reorder keys, so the
// hash input must be rebuilt deterministically.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch node := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeCanonical(buf, node[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		buf.WriteByte('[')
		for i, item := range node {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		raw, err := json.Marshal(node)
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil
	}
}
