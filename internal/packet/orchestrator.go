package packet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evidify/platform/internal/attention"
	"github.com/evidify/platform/internal/chainverify"
	"github.com/evidify/platform/internal/difficulty"
	"github.com/evidify/platform/internal/disclosure"
	"github.com/evidify/platform/internal/errclass"
	"github.com/evidify/platform/internal/session"
	"github.com/evidify/platform/internal/workload"
)

// GenerateInput is the full input contract: a session snapshot plus the
// optional scorer inputs. Every optional field has a documented default in
// its owning package; only the snapshot itself is validated.
type GenerateInput struct {
	Snapshot session.Snapshot `json:"snapshot"`

	Difficulty  *difficulty.Input     `json:"difficulty,omitempty"`
	Telemetry   *attention.Telemetry  `json:"telemetry,omitempty"`
	GroundTruth *errclass.GroundTruth `json:"ground_truth,omitempty"`
	Workload    *workload.Input       `json:"workload,omitempty"`
	Disclosure  *disclosure.Record    `json:"disclosure,omitempty"`

	Checkpoints []session.AttestationCheckpoint `json:"checkpoints,omitempty"`

	Prevalence         errclass.Prevalence `json:"prevalence,omitempty"`
	OtherFindingsNoted int                 `json:"other_findings_noted,omitempty"`
}

// Generator assembles packets. The clock and random source are injectable
// so generation is reproducible under test.
type Generator struct {
	anonymizer *Anonymizer
	now        func() time.Time
	randRead   func([]byte) (int, error)
}

// NewGenerator creates a production generator using the wall clock and
// crypto/rand for id suffixes.
func NewGenerator(anonymizer *Anonymizer) *Generator {
	return &Generator{
		anonymizer: anonymizer,
		now:        time.Now,
		randRead:   rand.Read,
	}
}

// NewDeterministicGenerator fixes the clock and random source. Used by
// tests that assert byte-identical output for identical input.
func NewDeterministicGenerator(anonymizer *Anonymizer, now time.Time, seed byte) *Generator {
	return &Generator{
		anonymizer: anonymizer,
		now:        func() time.Time { return now },
		randRead: func(b []byte) (int, error) {
			for i := range b {
				b[i] = seed
			}
			return len(b), nil
		},
	}
}

// Generate runs the scoring engines and assembles one ExpertWitnessPacket.
// The scorers are pure functions with no shared state, so they run
// fork-join; the orchestration steps that follow have a genuine ordering
// dependency on all of them.
func (g *Generator) Generate(in GenerateInput) (*Packet, error) {
	snap := &in.Snapshot
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	var (
		diff  difficulty.Index
		att   attention.Summary
		class *errclass.Classification
		load  workload.Metrics
		open  disclosure.Score
		verif chainverify.Verification
		wg    sync.WaitGroup
	)

	wg.Add(6)
	go func() {
		defer wg.Done()
		diff = difficulty.Score(difficultyInput(in))
	}()
	go func() {
		defer wg.Done()
		att = attention.Analyze(in.Telemetry, findingRegionID(in))
	}()
	go func() {
		defer wg.Done()
		load = workload.Score(workloadInput(in))
	}()
	go func() {
		defer wg.Done()
		open = disclosure.Evaluate(in.Disclosure, snap.Final.Timestamp)
	}()
	go func() {
		defer wg.Done()
		verif = chainverify.Verify(snap.Chain, in.Checkpoints)
	}()
	go func() {
		defer wg.Done()
		if in.GroundTruth != nil {
			// The classifier needs the attention summary; recompute the
			// projection locally rather than sharing state across goroutines.
			c := errclass.Classify(errclass.Input{
				Truth:              *in.GroundTruth,
				Attention:          attention.Analyze(in.Telemetry, in.GroundTruth.RegionID),
				InitialFlagged:     snap.Initial.Positive,
				FinalFlagged:       snap.Final.Positive,
				OtherFindingsNoted: in.OtherFindingsNoted,
				Prevalence:         in.Prevalence,
			})
			class = &c
		}
	}()
	wg.Wait()

	compliance := deriveCompliance(snap, verif)
	executive := deriveExecutive(snap, diff, class, load, open, verif, compliance)

	now := g.now().UTC()
	p := &Packet{
		ID:                 g.packetID(now),
		GeneratedAt:        now,
		CaseID:             snap.CaseID,
		SessionID:          snap.SessionID,
		ClinicianPseudonym: g.anonymizer.Pseudonym(snap.ClinicianID),
		Difficulty:         diff,
		Attention:          att,
		Classification:     class,
		Workload:           load,
		Disclosure:         open,
		Verification:       verif,
		Compliance:         compliance,
		Executive:          executive,
		Appendix:           buildAppendix(snap),
	}
	return p, nil
}

func difficultyInput(in GenerateInput) difficulty.Input {
	if in.Difficulty == nil {
		return difficulty.Input{}
	}
	return *in.Difficulty
}

func workloadInput(in GenerateInput) workload.Input {
	if in.Workload == nil {
		// Degenerate single-case session anchored on the assessment
		// timestamps; throughput and fatigue stay near zero.
		return workload.Input{
			SessionStart:   in.Snapshot.Initial.Timestamp,
			Now:            in.Snapshot.Final.Timestamp,
			CasesCompleted: 1,
			TotalCases:     1,
		}
	}
	return *in.Workload
}

func findingRegionID(in GenerateInput) string {
	if in.GroundTruth == nil {
		return ""
	}
	return in.GroundTruth.RegionID
}

// packetID builds a display label: timestamp prefix plus a short random
// suffix. Identifiers are labels, not secrets.
func (g *Generator) packetID(now time.Time) string {
	suffix := make([]byte, 3)
	if _, err := g.randRead(suffix); err != nil {
		// Extremely unlikely; fall back to the nanosecond clock.
		ns := now.UnixNano()
		suffix = []byte{byte(ns), byte(ns >> 8), byte(ns >> 16)}
	}
	return fmt.Sprintf("EWP-%s-%s", now.Format("20060102-150405"), strings.ToUpper(hex.EncodeToString(suffix)))
}
