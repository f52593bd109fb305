package rules

// Report statuses.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Report is the final validation report: a status derived from the
// violation list, and the list itself.
type Report struct {
	Status     string      `json:"status"`
	Violations []Violation `json:"violations"`
}

// DeriveStatus maps an empty violation list to valid, anything else to
// invalid.
func DeriveStatus(violations []Violation) string {
	if len(violations) == 0 {
		return StatusValid
	}
	return StatusInvalid
}

// NewReport assembles a report. Violations are normalized to a non-nil
// slice so that a clean report serializes its list as [].
func NewReport(violations []Violation) Report {
	if violations == nil {
		violations = []Violation{}
	}
	return Report{Status: DeriveStatus(violations), Violations: violations}
}
