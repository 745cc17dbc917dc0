package attendance

// ProjectionResult is the verdict for one course after applying planned
// future misses against a target percentage.
type ProjectionResult struct {
	Record              CourseRecord `json:"record"`
	PlannedMisses       int          `json:"plannedMisses"`
	ProjectedPercentage float64      `json:"projectedPercentage"`
	IsSafe              bool         `json:"isSafe"`

	// MaxAdditionalSafeMisses is computed from the current actual counts, not
	// the hypothetical ones, so it shows real headroom regardless of what the
	// caller is simulating.
	MaxAdditionalSafeMisses int `json:"maxAdditionalSafeMisses"`

	// TargetReachable is false only for a 100% target with an existing
	// absence; a plain 0 in ClassesToAttend would otherwise read as "fine".
	TargetReachable bool `json:"targetReachable"`
}

// Simulate runs a what-if projection per course. Planned misses are assumed
// unattended (worst case): they grow only the denominator. Each course is
// evaluated independently; there is no cross-course miss budget.
func Simulate(records []CourseRecord, planned map[string]int, target int) []ProjectionResult {
	results := make([]ProjectionResult, 0, len(records))
	for _, r := range records {
		misses := planned[r.Key()]
		if misses < 0 {
			misses = 0
		}
		projected := Percentage(r.TotalClasses+misses, r.PresentClasses)
		results = append(results, ProjectionResult{
			Record:                  r,
			PlannedMisses:           misses,
			ProjectedPercentage:     projected,
			IsSafe:                  projected >= float64(target),
			MaxAdditionalSafeMisses: BunkAllowance(r.TotalClasses, r.PresentClasses, target),
			TargetReachable:         TargetReachable(r.TotalClasses, r.PresentClasses, target),
		})
	}
	return results
}
