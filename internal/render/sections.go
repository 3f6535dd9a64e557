// Package render projects a finished ExpertWitnessPacket into its three
// output formats. All formats are built from the same section model, in the
// same order, with the same formatting, so they are fact-equivalent by
// construction. Renderers never recompute domain logic.
package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/evidify/platform/internal/packet"
)

// Badge is a short labelled value rendered prominently.
type Badge struct {
	Label string
	Value string
}

// Table is a rendered table; all cells are pre-formatted strings.
type Table struct {
	Caption string
	Header  []string
	Rows    [][]string
}

// Section is one report section. The section list is the single source of
// facts for every output format.
type Section struct {
	Title      string
	Badges     []Badge
	Paragraphs []string
	Tables     []Table
}

// Formatting helpers. Every number in every format passes through exactly
// one of these.

// Minutes renders a duration in minutes with one decimal place.
func Minutes(m float64) string {
	return fmt.Sprintf("%.1f min", m)
}

// Percent renders a percentage as an integer.
func Percent(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p)))
}

// Seconds renders a millisecond duration as seconds with one decimal place.
func Seconds(ms float64) string {
	return fmt.Sprintf("%.1fs", ms/1000)
}

// Rate renders cases per hour with one decimal place.
func Rate(r float64) string {
	return fmt.Sprintf("%.1f cases/hour", r)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func passFail(b bool) string {
	if b {
		return "PASS"
	}
	return "FAIL"
}

// BuildSections assembles the fixed-order section list:
// Executive Summary, Workflow Compliance, Case Difficulty,
// Error Classification (only when present), Cognitive Load,
// Disclosure Compliance, Attention Analysis, Cryptographic Verification,
// Appendices.
func BuildSections(p *packet.Packet) []Section {
	sections := []Section{
		executiveSection(p),
		complianceSection(p),
		difficultySection(p),
	}
	if p.Classification != nil {
		sections = append(sections, classificationSection(p))
	}
	sections = append(sections,
		workloadSection(p),
		disclosureSection(p),
		attentionSection(p),
		verificationSection(p),
		appendixSection(p),
	)
	return sections
}

func executiveSection(p *packet.Packet) Section {
	s := Section{
		Title: "Executive Summary",
		Badges: []Badge{
			{Label: "Packet", Value: p.ID},
			{Label: "Case", Value: p.CaseID},
			{Label: "Clinician", Value: p.ClinicianPseudonym},
			{Label: "Liability", Value: string(p.Executive.LiabilityLevel)},
		},
		Paragraphs: []string{p.Executive.Narrative, p.Executive.Recommendation},
	}

	factors := Table{
		Caption: "Liability Factors",
		Header:  []string{"Weight", "Factor"},
	}
	for _, f := range p.Executive.MitigatingFactors {
		factors.Rows = append(factors.Rows, []string{"mitigating", f})
	}
	for _, f := range p.Executive.AggravatingFactors {
		factors.Rows = append(factors.Rows, []string{"aggravating", f})
	}
	if len(factors.Rows) > 0 {
		s.Tables = append(s.Tables, factors)
	}
	return s
}

func complianceSection(p *packet.Packet) Section {
	t := Table{
		Caption: "Workflow Checks",
		Header:  []string{"Check", "Result", "Detail"},
	}
	for _, c := range p.Compliance.Checks {
		t.Rows = append(t.Rows, []string{c.Name, passFail(c.Passed), c.Detail})
	}
	return Section{
		Title:  "Workflow Compliance",
		Badges: []Badge{{Label: "Status", Value: string(p.Compliance.Status)}},
		Tables: []Table{t},
	}
}

func difficultySection(p *packet.Packet) Section {
	d := p.Difficulty
	t := Table{
		Caption: "Difficulty Factors",
		Header:  []string{"Factor", "Score", "Description"},
	}
	for _, name := range d.FactorNames() {
		f := d.Factors[name]
		t.Rows = append(t.Rows, []string{name, strconv.Itoa(f.Score), f.Description})
	}
	return Section{
		Title: "Case Difficulty",
		Badges: []Badge{
			{Label: "Composite Score", Value: strconv.Itoa(d.CompositeScore)},
			{Label: "Level", Value: string(d.Level)},
			{Label: "Percentile", Value: Percent(d.Percentile)},
			{Label: "Expected RADPEER", Value: strconv.Itoa(d.ReviewerAgreement.ExpectedRadpeerScore)},
		},
		Paragraphs: []string{
			d.ScientificBasis,
			d.ExpectedMissRate,
			"Reviewer agreement prediction: " + d.ReviewerAgreement.Label + ".",
		},
		Tables: []Table{t},
	}
}

func classificationSection(p *packet.Packet) Section {
	c := p.Classification
	ev := Table{
		Caption: "Classification Evidence",
		Header:  []string{"Evidence", "Value"},
		Rows: [][]string{
			{"finding region visited", yesNo(c.Evidence.RegionVisited)},
			{"dwell time on finding region", Seconds(c.Evidence.DwellMs)},
			{"maximum zoom on finding region", fmt.Sprintf("%.1fx", c.Evidence.MaxZoom)},
			{"finding region visit count", strconv.Itoa(c.Evidence.VisitCount)},
			{"overall image coverage", Percent(c.Evidence.CoveragePercent)},
			{"other findings noted", strconv.Itoa(c.Evidence.OtherFindingsNoted)},
			{"flagged in initial assessment", yesNo(c.Evidence.InitialFlagged)},
			{"flagged in final assessment", yesNo(c.Evidence.FinalFlagged)},
		},
	}
	return Section{
		Title: "Error Classification",
		Badges: []Badge{
			{Label: "Classification", Value: string(c.Type)},
			{Label: "Confidence", Value: Percent(float64(c.Confidence))},
		},
		Paragraphs: []string{c.ScientificContext, c.LiabilityImplication},
		Tables:     []Table{ev},
	}
}

func workloadSection(p *packet.Packet) Section {
	w := p.Workload
	t := Table{
		Caption: "Session Workload",
		Header:  []string{"Metric", "Value"},
		Rows: [][]string{
			{"session duration", Minutes(w.SessionMinutes)},
			{"effective reading time", Minutes(w.EffectiveMinutes)},
			{"break time", Minutes(w.BreakMinutes)},
			{"cases completed", strconv.Itoa(w.CasesCompleted)},
			{"throughput", Rate(w.CasesPerHour)},
			{"position in session", fmt.Sprintf("case %d of %d", w.CurrentCaseIndex, w.TotalCases)},
			{"fatigue index", strconv.Itoa(w.FatigueIndex)},
			{"immediate break advised", yesNo(w.ImmediateBreakAdvised)},
		},
	}
	return Section{
		Title: "Cognitive Load",
		Badges: []Badge{
			{Label: "Threshold Status", Value: string(w.ThresholdStatus)},
			{Label: "Fatigue Level", Value: string(w.FatigueLevel)},
		},
		Paragraphs: []string{w.Conclusion},
		Tables:     []Table{t},
	}
}

func disclosureSection(p *packet.Packet) Section {
	d := p.Disclosure
	t := Table{
		Caption: "Intelligent Openness Pillars",
		Header:  []string{"Pillar", "Met", "Detail"},
		Rows: [][]string{
			{"accessible", yesNo(d.Accessible.Met), d.Accessible.Detail},
			{"intelligible", yesNo(d.Intelligible.Met), d.Intelligible.Detail},
			{"usable", yesNo(d.Usable.Met), d.Usable.Detail},
			{"assessable", yesNo(d.Assessable.Met), d.Assessable.Detail},
		},
	}
	return Section{
		Title: "Disclosure Compliance",
		Badges: []Badge{
			{Label: "Score", Value: fmt.Sprintf("%d/4", d.OverallScore)},
			{Label: "Level", Value: string(d.ComplianceLevel)},
		},
		Tables: []Table{t},
	}
}

func attentionSection(p *packet.Packet) Section {
	a := p.Attention
	summary := Table{
		Caption: "Viewing Summary",
		Header:  []string{"Metric", "Value"},
		Rows: [][]string{
			{"total regional dwell", Seconds(a.TotalViewingMs)},
			{"pre-assistance viewing", Seconds(a.PreAssistMs)},
			{"post-assistance viewing", Seconds(a.PostAssistMs)},
			{"image coverage", Percent(a.CoveragePercent)},
		},
	}

	regions := Table{
		Caption: "Per-Region Attention",
		Header:  []string{"Region", "Dwell", "Max Zoom", "Visits", "Visited"},
	}
	for _, r := range a.Regions {
		regions.Rows = append(regions.Rows, []string{
			r.Name, Seconds(r.DwellMs), fmt.Sprintf("%.1fx", r.MaxZoom),
			strconv.Itoa(r.VisitCount), yesNo(r.Visited),
		})
	}

	s := Section{
		Title:  "Attention Analysis",
		Tables: []Table{summary},
	}
	if len(regions.Rows) > 0 {
		s.Tables = append(s.Tables, regions)
	}
	if fr := a.FindingRegion; fr != nil {
		s.Paragraphs = append(s.Paragraphs, fmt.Sprintf(
			"The ground-truth finding lies in region %q, which received %s of dwell across %d visit(s).",
			fr.Name, Seconds(fr.DwellMs), fr.VisitCount))
	}
	return s
}

func verificationSection(p *packet.Packet) Section {
	v := p.Verification
	t := Table{
		Caption: "Chain and Attestation",
		Header:  []string{"Property", "Value"},
		Rows: [][]string{
			{"chain integrity", string(v.ChainIntegrity)},
			{"genesis verified", yesNo(v.GenesisVerified)},
			{"final hash verified", yesNo(v.FinalVerified)},
			{"tampering detected", yesNo(v.TamperingDetected)},
			{"attestation checkpoints", strconv.Itoa(v.Attestation.CheckpointCount)},
			{"attestation coverage", Percent(float64(v.Attestation.CoveragePercent))},
		},
	}
	if v.Attestation.CheckpointCount > 0 {
		t.Rows = append(t.Rows,
			[]string{"earliest attestation", v.Attestation.EarliestAt.UTC().Format("2006-01-02 15:04:05 UTC")},
			[]string{"latest attestation", v.Attestation.LatestAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		)
	}
	return Section{
		Title:  "Cryptographic Verification",
		Badges: []Badge{{Label: "Chain Status", Value: string(v.Status)}},
		Tables: []Table{t},
	}
}

func appendixSection(p *packet.Packet) Section {
	cites := Table{
		Caption: "References",
		Header:  []string{"Key", "Reference"},
	}
	for _, c := range p.Appendix.Citations {
		cites.Rows = append(cites.Rows, []string{c.Key, c.Reference})
	}

	gloss := Table{
		Caption: "Glossary",
		Header:  []string{"Term", "Definition"},
	}
	for _, g := range p.Appendix.Glossary {
		gloss.Rows = append(gloss.Rows, []string{g.Term, g.Definition})
	}

	return Section{
		Title: "Appendices",
		Paragraphs: []string{fmt.Sprintf(
			"The underlying event log contains %d entries; its final chain hash is %s. The full log is retained by the event ledger and is not embedded in this document.",
			p.Appendix.EventLog.EntryCount, p.Appendix.EventLog.FinalHash)},
		Tables: []Table{cites, gloss},
	}
}
