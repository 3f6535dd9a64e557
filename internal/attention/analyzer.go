// Package attention normalizes raw viewport telemetry into the canonical
// per-region evidence structure the error classifier depends on. It does no
// scoring of its own.
package attention

// Telemetry is the raw viewport record supplied by the viewer application.
type Telemetry struct {
	PreAssistMs     float64        `json:"pre_assist_ms"`
	PostAssistMs    float64        `json:"post_assist_ms"`
	CoveragePercent float64        `json:"coverage_percent"`
	Regions         []RegionSample `json:"regions,omitempty"`
}

// RegionSample is one anatomical region's raw dwell record.
type RegionSample struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DwellMs    float64 `json:"dwell_ms"`
	MaxZoom    float64 `json:"max_zoom"`
	VisitCount int     `json:"visit_count"`
}

// Region is the normalized per-region record.
type Region struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DwellMs    float64 `json:"dwell_ms"`
	MaxZoom    float64 `json:"max_zoom"`
	VisitCount int     `json:"visit_count"`
	Visited    bool    `json:"visited"`
}

// Summary is the canonical attention evidence for one session. Regions keep
// their input order; FindingRegion points at the region containing the
// ground-truth finding when one was identified.
type Summary struct {
	TotalViewingMs  float64  `json:"total_viewing_ms"`
	PreAssistMs     float64  `json:"pre_assist_ms"`
	PostAssistMs    float64  `json:"post_assist_ms"`
	CoveragePercent float64  `json:"coverage_percent"`
	Regions         []Region `json:"regions"`
	FindingRegion   *Region  `json:"finding_region,omitempty"`
}

// Analyze projects raw telemetry into a Summary. A nil telemetry record is
// legal and yields a zeroed summary. findingRegionID may be empty when no
// ground-truth location is known.
func Analyze(t *Telemetry, findingRegionID string) Summary {
	if t == nil {
		return Summary{Regions: []Region{}}
	}

	s := Summary{
		PreAssistMs:     t.PreAssistMs,
		PostAssistMs:    t.PostAssistMs,
		CoveragePercent: t.CoveragePercent,
		Regions:         make([]Region, 0, len(t.Regions)),
	}

	for _, r := range t.Regions {
		region := Region{
			ID:         r.ID,
			Name:       r.Name,
			DwellMs:    r.DwellMs,
			MaxZoom:    r.MaxZoom,
			VisitCount: r.VisitCount,
			Visited:    r.VisitCount > 0,
		}
		s.TotalViewingMs += r.DwellMs
		s.Regions = append(s.Regions, region)

		if findingRegionID != "" && r.ID == findingRegionID {
			// Copy, not a pointer into the slice: the summary is immutable
			// once returned.
			fr := region
			s.FindingRegion = &fr
		}
	}

	return s
}
