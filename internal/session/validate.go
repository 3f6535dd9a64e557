package session

import (
	"github.com/evidify/platform/internal/shared/errors"
)

// Validate checks the fields the pipeline cannot default. A snapshot that
// fails validation must never produce a packet: derived figures (throughput,
// reveal delay, compliance) would be fabricated.
func (s *Snapshot) Validate() error {
	details := map[string]string{}

	if s.CaseID == "" {
		details["case_id"] = "required"
	}
	if s.SessionID == "" {
		details["session_id"] = "required"
	}
	if s.ClinicianID == "" {
		details["clinician_id"] = "required"
	}
	if s.Initial.Timestamp.IsZero() {
		details["initial_assessment.timestamp"] = "required"
	}
	if s.Final.Timestamp.IsZero() {
		details["final_assessment.timestamp"] = "required"
	}
	if !s.Initial.Timestamp.IsZero() && !s.Final.Timestamp.IsZero() &&
		s.Final.Timestamp.Before(s.Initial.Timestamp) {
		details["final_assessment.timestamp"] = "precedes initial assessment"
	}

	if len(details) > 0 {
		return errors.Validation("invalid session snapshot", details)
	}
	return nil
}
