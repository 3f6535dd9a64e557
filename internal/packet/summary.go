package packet

import (
	"fmt"

	"github.com/evidify/platform/internal/chainverify"
	"github.com/evidify/platform/internal/difficulty"
	"github.com/evidify/platform/internal/disclosure"
	"github.com/evidify/platform/internal/errclass"
	"github.com/evidify/platform/internal/session"
	"github.com/evidify/platform/internal/workload"
)

// recommendations is keyed by liability level so the closing advice is a
// pure function of the derived classification.
var recommendations = map[LiabilityLevel]string{
	LiabilityLow:      "The documented process satisfies procedural and evidentiary standards; this packet supports a process-based defense without further remediation.",
	LiabilityModerate: "The documented process is broadly defensible but carries open factors; counsel should review the unmet checks and factor lists before relying on this packet.",
	LiabilityHigh:     "The documented process carries material aggravating factors; remediation of the flagged workflow failures should precede any reliance on this packet.",
}

// deriveExecutive template-fills the one-paragraph executive summary from
// already-derived values. It introduces no numbers of its own, so every
// figure in the narrative is traceable to a structured field.
func deriveExecutive(
	snap *session.Snapshot,
	diff difficulty.Index,
	class *errclass.Classification,
	load workload.Metrics,
	open disclosure.Score,
	verif chainverify.Verification,
	compliance WorkflowCompliance,
) ExecutiveSummary {
	level, mitigating, aggravating := deriveLiability(snap, diff, class, load, open, verif)

	errorClause := "No diagnostic error was classified for this case."
	if class != nil && class.Type != errclass.NoError {
		errorClause = fmt.Sprintf("The miss was classified as %s with %d%% confidence.",
			class.Type, class.Confidence)
	}

	narrative := fmt.Sprintf(
		"Case %s was read in a session of %.1f minutes at %.1f cases per hour (workload status %s). "+
			"The case difficulty index was %d of 100 (%s). %s "+
			"Workflow compliance was assessed as %s and the assessed liability exposure is %s.",
		snap.CaseID,
		load.SessionMinutes,
		load.CasesPerHour,
		load.ThresholdStatus,
		diff.CompositeScore,
		diff.Level,
		errorClause,
		compliance.Status,
		level,
	)

	return ExecutiveSummary{
		Narrative:          narrative,
		LiabilityLevel:     level,
		MitigatingFactors:  mitigating,
		AggravatingFactors: aggravating,
		Recommendation:     recommendations[level],
	}
}

// citations is the fixed appendix reference list. Scorer narratives cite
// from this set.
var citations = []Citation{
	{Key: "Bird 1992", Reference: "Bird RE, Wallace TW, Yankaskas BC. Analysis of cancers missed at screening mammography. Radiology. 1992;184(3):613-617."},
	{Key: "Kundel 1978", Reference: "Kundel HL, Nodine CF, Carmody D. Visual scanning, pattern recognition and decision-making in pulmonary nodule detection. Invest Radiol. 1978;13(3):175-181."},
	{Key: "Berbaum 1990", Reference: "Berbaum KS, Franken EA, Dorfman DD, et al. Satisfaction of search in diagnostic radiology. Invest Radiol. 1990;25(2):133-140."},
	{Key: "Wolfe 2005", Reference: "Wolfe JM, Horowitz TS, Kenner NM. Rare items often missed in visual searches. Nature. 2005;435(7041):439-440."},
	{Key: "Kolb 2002", Reference: "Kolb TM, Lichy J, Newhouse JH. Comparison of the performance of screening mammography, physical examination, and breast US. Radiology. 2002;225(1):165-175."},
	{Key: "Majid 2003", Reference: "Majid AS, de Paredes ES, Doherty RD, Sharma NR, Salvador X. Missed breast carcinoma: pitfalls and pearls. RadioGraphics. 2003;23(4):881-895."},
	{Key: "Evans 2013", Reference: "Evans KK, Birdwell RL, Wolfe JM. If you don't find it often, you often don't find it: why some cancers are missed in breast cancer screening. PNAS. 2013;110(47):18633-18638."},
}

// glossary is the fixed appendix term list.
var glossary = []GlossaryEntry{
	{Term: "CDI", Definition: "Case Difficulty Index: a composite 0-100 score estimating how hard a diagnostic case was to interpret correctly."},
	{Term: "RADPEER score", Definition: "A 1-4 ordinal peer-review rating; 2 denotes a discrepancy most reviewers consider an understandable miss."},
	{Term: "Hash chain", Definition: "A sequence of records where each entry embeds the previous entry's hash, so any historical modification is detectable."},
	{Term: "TSA checkpoint", Definition: "A third-party-attested timestamp binding an event hash to a point in time, independent of the system under audit."},
	{Term: "Intelligent openness", Definition: "A four-pillar standard (accessible, intelligible, usable, assessable) for judging the adequacy of an AI-limitation disclosure."},
	{Term: "Satisfaction of search", Definition: "A cognitive phenomenon where detecting one abnormality reduces the likelihood of detecting additional ones."},
	{Term: "Prevalence effect", Definition: "Reduced detection sensitivity for rare targets in low-base-rate screening contexts."},
}

func buildAppendix(snap *session.Snapshot) Appendix {
	return Appendix{
		EventLog: EventLogReference{
			EntryCount: snap.Chain.EntryCount,
			FinalHash:  snap.Chain.FinalHash,
		},
		Citations: citations,
		Glossary:  glossary,
	}
}
