package store

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/circuitsmith/boardlint/engine/rules"
)

// decodeReport reads a stored validation report, tolerating the historical
// shape where the report was a bare violation list with no status. The
// inference lives only here, at the read boundary; the pipeline always
// produces the structured shape.
func decodeReport(raw []byte) rules.Report {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var violations []rules.Violation
		if err := json.Unmarshal(trimmed, &violations); err != nil {
			return rules.Report{Status: "unknown", Violations: []rules.Violation{}}
		}
		return rules.NewReport(violations)
	}

	var report rules.Report
	if err := json.Unmarshal(trimmed, &report); err != nil || report.Status == "" {
		report.Status = "unknown"
	}
	if report.Violations == nil {
		report.Violations = []rules.Violation{}
	}
	return report
}
