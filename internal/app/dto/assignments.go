package dto

import "tourbook/internal/domain/assignment"

// AssignmentReport lists one outcome per executed operation. There is no
// overall verdict: Failed > 0 does not mean nothing was written.
type AssignmentReport struct {
	PackageID string               `json:"package_id,omitempty"`
	GuideID   string               `json:"guide_id,omitempty"`
	Outcomes  []assignment.Outcome `json:"outcomes"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

func MapAssignmentReport(scope assignment.Scope, outcomes []assignment.Outcome) AssignmentReport {
	report := AssignmentReport{
		PackageID: string(scope.PackageID),
		GuideID:   string(scope.GuideID),
		Outcomes:  emptyIfNil(outcomes),
	}
	for _, o := range outcomes {
		if o.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report
}
