package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evidify/platform/internal/session"
	"github.com/evidify/platform/internal/shared/errors"
	"github.com/evidify/platform/internal/shared/metrics"
)

// Store persists chain entries per session, in sequence order.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, sessionID string) ([]Entry, error)
}

// Ledger serializes appends so each session chain has one writer at a time.
type Ledger struct {
	store Store
	now   func() time.Time

	mu   sync.Mutex
	tail map[string]tailState
}

type tailState struct {
	sequence int64
	hash     string
}

// New creates a ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
		tail:  make(map[string]tailState),
	}
}

// Append records one workflow event and returns the stored entry.
func (l *Ledger) Append(ctx context.Context, sessionID, eventType string, payload map[string]any) (*Entry, error) {
	if sessionID == "" {
		return nil, errors.BadRequest("session id is required")
	}
	if eventType == "" {
		return nil, errors.BadRequest("event type is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tail, err := l.loadTail(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entry := NewEntry(sessionID, eventType, payload, tail.sequence+1, tail.hash, l.now())
	if err := l.store.Append(ctx, entry); err != nil {
		return nil, err
	}

	l.tail[sessionID] = tailState{sequence: entry.Sequence, hash: entry.Hash}
	metrics.RecordLedgerEntry()
	return entry, nil
}

// loadTail recovers the chain tail from the store on first touch, so the
// ledger survives restarts without replaying every session at boot.
func (l *Ledger) loadTail(ctx context.Context, sessionID string) (tailState, error) {
	if tail, ok := l.tail[sessionID]; ok {
		return tail, nil
	}

	entries, err := l.store.List(ctx, sessionID)
	if err != nil {
		return tailState{}, err
	}
	if len(entries) == 0 {
		return tailState{hash: Genesis}, nil
	}

	last := entries[len(entries)-1]
	tail := tailState{sequence: last.Sequence, hash: last.Hash}
	l.tail[sessionID] = tail
	return tail, nil
}

// Entries returns the full chain for a session in sequence order.
func (l *Ledger) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	return l.store.List(ctx, sessionID)
}

// VerifyResult is the detailed chain verification outcome.
type VerifyResult struct {
	Valid      bool     `json:"valid"`
	Checked    int      `json:"checked"`
	Violations []string `json:"violations,omitempty"`

	GenesisHash string `json:"genesis_hash"`
	FinalHash   string `json:"final_hash"`
}

// Verify walks a session chain front to back and checks three properties:
// every entry's content hash matches, every link matches the previous hash,
// and sequence numbers are gapless from 1.
func (l *Ledger) Verify(ctx context.Context, sessionID string) (*VerifyResult, error) {
	entries, err := l.store.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Valid: true, GenesisHash: Genesis}
	prevHash := Genesis

	for i, e := range entries {
		result.Checked++

		if !e.VerifyHash() {
			result.Valid = false
			result.Violations = append(result.Violations,
				fmt.Sprintf("entry %d: stored hash does not match content", e.Sequence))
		}
		if e.PrevHash != prevHash {
			result.Valid = false
			result.Violations = append(result.Violations,
				fmt.Sprintf("entry %d: chain link broken", e.Sequence))
		}
		if e.Sequence != int64(i)+1 {
			result.Valid = false
			result.Violations = append(result.Violations,
				fmt.Sprintf("entry %d: sequence gap, expected %d", e.Sequence, i+1))
		}

		prevHash = e.Hash
		result.FinalHash = e.Hash
	}

	status := "valid"
	if !result.Valid {
		status = "invalid"
	}
	metrics.RecordChainVerification(status)
	return result, nil
}

// Descriptor verifies a session chain and projects it into the snapshot
// form the packet pipeline consumes.
func (l *Ledger) Descriptor(ctx context.Context, sessionID string) (session.ChainDescriptor, []session.Event, error) {
	entries, err := l.store.List(ctx, sessionID)
	if err != nil {
		return session.ChainDescriptor{}, nil, err
	}

	result, err := l.Verify(ctx, sessionID)
	if err != nil {
		return session.ChainDescriptor{}, nil, err
	}

	events := make([]session.Event, 0, len(entries))
	for _, e := range entries {
		events = append(events, session.Event{
			Sequence:  e.Sequence,
			Type:      e.Type,
			Timestamp: e.Timestamp,
			Hash:      e.Hash,
		})
	}

	return session.ChainDescriptor{
		GenesisHash: result.GenesisHash,
		FinalHash:   result.FinalHash,
		EntryCount:  result.Checked,
		Verified:    result.Valid && result.Checked > 0,
	}, events, nil
}
