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

// The five named workflow checks.
const (
	CheckAssessmentRecorded  = "assessment_recorded"
	CheckAssessmentHash      = "assessment_hash_present"
	CheckAIRevealedAfterLock = "ai_revealed_after_lock"
	CheckDeviationDocumented = "deviation_documented"
	CheckChainVerified       = "hash_chain_verified"
)

func deriveCompliance(snap *session.Snapshot, verif chainverify.Verification) WorkflowCompliance {
	checks := make([]Check, 0, 5)

	checks = append(checks, Check{
		Name:   CheckAssessmentRecorded,
		Passed: snap.Initial.Value != "" && snap.Final.Value != "",
		Detail: "initial and final assessments locked with values",
	})

	checks = append(checks, Check{
		Name:   CheckAssessmentHash,
		Passed: snap.Initial.ContentHash != "" && snap.Final.ContentHash != "",
		Detail: "content hashes recorded for both locked assessments",
	})

	aiCheck := Check{
		Name:   CheckAIRevealedAfterLock,
		Passed: true,
		Detail: "no AI assistance in this session",
	}
	if delay, ok := snap.AIRevealDelay(); ok {
		aiCheck.Passed = delay >= 0
		aiCheck.Detail = fmt.Sprintf("AI revealed %.1fs after the initial lock", delay.Seconds())
	}
	checks = append(checks, aiCheck)

	devRequired := snap.DeviationRequired()
	devDocumented := snap.Deviation != nil && snap.Deviation.Documented
	checks = append(checks, Check{
		Name:   CheckDeviationDocumented,
		Passed: !devRequired || devDocumented,
		Detail: deviationDetail(devRequired, devDocumented),
	})

	chainOK := verif.Status == chainverify.StatusVerified
	checks = append(checks, Check{
		Name:   CheckChainVerified,
		Passed: chainOK,
		Detail: fmt.Sprintf("event ledger reports chain %s", verif.Status),
	})

	return WorkflowCompliance{
		Checks: checks,
		Status: complianceStatus(checks, chainOK, devRequired, devDocumented),
	}
}

func deviationDetail(required, documented bool) string {
	switch {
	case !required:
		return "no deviation from the AI recommendation was required"
	case documented:
		return "deviation from the AI recommendation was documented"
	default:
		return "required deviation documentation is missing"
	}
}

// complianceStatus: COMPLIANT when all five checks pass; NON_COMPLIANT when
// the chain failed or a required deviation is undocumented; PARTIAL for any
// other mix.
func complianceStatus(checks []Check, chainOK, devRequired, devDocumented bool) ComplianceStatus {
	allPassed := true
	for _, c := range checks {
		if !c.Passed {
			allPassed = false
			break
		}
	}
	switch {
	case allPassed:
		return Compliant
	case !chainOK || (devRequired && !devDocumented):
		return NonCompliant
	default:
		return Partial
	}
}

// benignErrorTypes are classifications that reflect recognized population
// level cognitive effects rather than individually attributable failures.
var benignErrorTypes = map[errclass.Type]bool{
	errclass.NoError:              true,
	errclass.SatisfactionOfSearch: true,
	errclass.PrevalenceEffect:     true,
}

// Factor labels used in the executive summary. These are fixed strings so
// packets are comparable across sessions.
const (
	mitHighDifficulty = "case difficulty was high or very high"
	mitWorkloadGreen  = "session workload was within accepted limits"
	mitBenignError    = "the error classification reflects a recognized cognitive effect, not negligence"
	mitChainVerified  = "the event record is cryptographically verified and tamper-evident"
	mitDisclosure     = "AI limitations were disclosed to a substantial or full standard"

	aggWorkloadRed    = "session workload exceeded accepted limits"
	aggUndocDeviation = "a required deviation from the AI recommendation was not documented"
)

// deriveLiability applies the fixed factor-count rule table: LOW needs zero
// aggravating and at least three mitigating factors; HIGH needs two or more
// aggravating; everything else is MODERATE. The thresholds are given
// business rules, reproduced exactly.
func deriveLiability(
	snap *session.Snapshot,
	diff difficulty.Index,
	class *errclass.Classification,
	load workload.Metrics,
	open disclosure.Score,
	verif chainverify.Verification,
) (LiabilityLevel, []string, []string) {
	var mitigating, aggravating []string

	if diff.Level == difficulty.LevelHigh || diff.Level == difficulty.LevelVeryHigh {
		mitigating = append(mitigating, mitHighDifficulty)
	}
	if load.ThresholdStatus == workload.StatusGreen {
		mitigating = append(mitigating, mitWorkloadGreen)
	}
	if class != nil && benignErrorTypes[class.Type] {
		mitigating = append(mitigating, mitBenignError)
	}
	if verif.Status == chainverify.StatusVerified {
		mitigating = append(mitigating, mitChainVerified)
	}
	if open.OverallScore >= 3 {
		mitigating = append(mitigating, mitDisclosure)
	}

	if load.ThresholdStatus == workload.StatusRed {
		aggravating = append(aggravating, aggWorkloadRed)
	}
	if snap.DeviationRequired() && !(snap.Deviation != nil && snap.Deviation.Documented) {
		aggravating = append(aggravating, aggUndocDeviation)
	}

	var level LiabilityLevel
	switch {
	case len(aggravating) == 0 && len(mitigating) >= 3:
		level = LiabilityLow
	case len(aggravating) >= 2:
		level = LiabilityHigh
	default:
		level = LiabilityModerate
	}
	return level, mitigating, aggravating
}
