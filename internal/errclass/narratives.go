package errclass

// Fixed narrative pairs, selected by branch identity alone. The SEARCH_ERROR
// liability text is additionally modulated by overall image coverage, which
// is the only evidence-dependent variation in this table.

type narrativePair struct {
	scientific string
	liability  string
}

var narratives = map[Type]narrativePair{
	NoError: {
		scientific: "The final assessment is concordant with ground truth. No perceptual or decision error occurred in this reading.",
		liability:  "No missed-finding liability arises from this session; the record documents a correct diagnostic process.",
	},
	SearchError: {
		scientific: "Search errors occur when the reader's scan path never fixates the finding's location. Kundel et al. (Radiology 1978) attribute roughly 30% of missed lung nodules to faulty search, and the pattern generalizes across modalities.",
		liability:  "", // chosen by coverage, see liabilityForSearch
	},
	RecognitionError: {
		scientific: "Recognition errors occur when the finding is fixated but its features are not consciously registered. These account for roughly 25% of perceptual misses (Kundel et al., Radiology 1978) and correlate with low conspicuity.",
		liability:  "The reader examined the correct region; the miss reflects the known limits of human pattern recognition rather than inadequate search. Difficulty evidence in this packet bears directly on the standard-of-care analysis.",
	},
	DecisionError: {
		scientific: "Decision errors occur when a finding is detected and initially reported but dismissed before the final impression. The initial flag followed by removal is direct timeline evidence of detection followed by reclassification.",
		liability:  "Because the finding was demonstrably perceived, the defensibility question shifts from perception to clinical judgment: whether dismissal was reasonable given the information available at the time.",
	},
	SatisfactionOfSearch: {
		scientific: "Satisfaction of search is the premature termination of visual search after an initial detection (Berbaum et al., Invest Radiol 1990). The reader reported other findings while the missed finding's region went effectively unexamined.",
		liability:  "Satisfaction of search is a well-documented cognitive phenomenon affecting experienced readers at baseline rates; its presence argues the miss reflects a systematic perceptual effect rather than individual negligence.",
	},
	PrevalenceEffect: {
		scientific: "Low target prevalence measurably reduces detection sensitivity: misses roughly double when prevalence falls from 50% to 1% (Wolfe et al., Nature 2005; Evans et al., PNAS 2013). This session's screening context is a low-prevalence environment.",
		liability:  "The prevalence effect operates on all readers in screening settings and is not correctable by individual diligence; it is a recognized population-level mitigating factor.",
	},
}

const (
	searchLiabilityHighCoverage = "Overall image coverage met the accepted threshold, indicating a systematic search pattern; the missed region is an isolated gap rather than evidence of a cursory read."
	searchLiabilityLowCoverage  = "Overall image coverage fell below the accepted threshold, which a reviewing expert may read as an incomplete search pattern; the attention record in this packet is the primary evidence on that question."
)

func narrate(c Classification, ev Evidence) Classification {
	pair := narratives[c.Type]
	c.ScientificContext = pair.scientific
	c.LiabilityImplication = pair.liability

	if c.Type == SearchError {
		if ev.CoveragePercent >= highCoverageThreshold {
			c.LiabilityImplication = searchLiabilityHighCoverage
		} else {
			c.LiabilityImplication = searchLiabilityLowCoverage
		}
	}
	return c
}
