// Package packet assembles the outputs of the scoring engines into the
// ExpertWitnessPacket, the one entity this system persists and exports.
package packet

import (
	"time"

	"github.com/evidify/platform/internal/attention"
	"github.com/evidify/platform/internal/chainverify"
	"github.com/evidify/platform/internal/difficulty"
	"github.com/evidify/platform/internal/disclosure"
	"github.com/evidify/platform/internal/errclass"
	"github.com/evidify/platform/internal/workload"
)

// ComplianceStatus is the aggregate workflow verdict.
type ComplianceStatus string

const (
	Compliant    ComplianceStatus = "COMPLIANT"
	Partial      ComplianceStatus = "PARTIAL"
	NonCompliant ComplianceStatus = "NON_COMPLIANT"
)

// LiabilityLevel is the rule-table liability classification.
type LiabilityLevel string

const (
	LiabilityLow      LiabilityLevel = "LOW"
	LiabilityModerate LiabilityLevel = "MODERATE"
	LiabilityHigh     LiabilityLevel = "HIGH"
)

// Check is one named workflow compliance check.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// WorkflowCompliance holds the five checks and their aggregate status.
type WorkflowCompliance struct {
	Checks []Check          `json:"checks"`
	Status ComplianceStatus `json:"status"`
}

// ExecutiveSummary is the derived top-of-report assessment.
type ExecutiveSummary struct {
	Narrative          string         `json:"narrative"`
	LiabilityLevel     LiabilityLevel `json:"liability_level"`
	MitigatingFactors  []string       `json:"mitigating_factors"`
	AggravatingFactors []string       `json:"aggravating_factors"`
	Recommendation     string         `json:"recommendation"`
}

// EventLogReference points at the raw event log without embedding it.
type EventLogReference struct {
	EntryCount int    `json:"entry_count"`
	FinalHash  string `json:"final_hash,omitempty"`
}

// Citation is one literature reference in the appendix.
type Citation struct {
	Key       string `json:"key"`
	Reference string `json:"reference"`
}

// Appendix bundles the supporting material.
type Appendix struct {
	EventLog  EventLogReference `json:"event_log"`
	Citations []Citation        `json:"citations"`
	Glossary  []GlossaryEntry   `json:"glossary"`
}

// GlossaryEntry is one term definition.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Packet is the ExpertWitnessPacket aggregate root. Every field is computed
// once during generation and immutable afterward; renderers consume this
// model and never recompute domain logic.
type Packet struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	CaseID    string `json:"case_id"`
	SessionID string `json:"session_id"`

	// ClinicianPseudonym is the one-way anonymized clinician identity. The
	// raw identifier never appears in an exported artifact.
	ClinicianPseudonym string `json:"clinician_pseudonym"`

	Difficulty     difficulty.Index          `json:"difficulty"`
	Attention      attention.Summary         `json:"attention"`
	Classification *errclass.Classification  `json:"classification,omitempty"`
	Workload       workload.Metrics          `json:"workload"`
	Disclosure     disclosure.Score          `json:"disclosure"`
	Verification   chainverify.Verification  `json:"verification"`

	Compliance WorkflowCompliance `json:"compliance"`
	Executive  ExecutiveSummary   `json:"executive_summary"`
	Appendix   Appendix           `json:"appendix"`
}
