package attendance

// Pure attendance arithmetic. Every function here is deterministic and
// total over valid counts; handlers validate inputs before calling in.

// Percentage returns 100*present/total, or 0 when no classes were held.
func Percentage(total, present int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) * 100 / float64(total)
}

// OverallPercentage is the count-weighted percentage across all records with
// at least one held class. A course with many sessions moves the figure more
// than one with few; this is not an average of per-course percentages.
func OverallPercentage(records []CourseRecord) float64 {
	var total, present int
	for _, r := range records {
		if r.TotalClasses <= 0 {
			continue
		}
		total += r.TotalClasses
		present += r.PresentClasses
	}
	return Percentage(total, present)
}

// BunkAllowance returns the maximum number of additional classes that can all
// be missed while staying at or above target percent:
// floor(present*100/target - total), clamped at 0.
func BunkAllowance(total, present, target int) int {
	if total <= 0 || target <= 0 {
		return 0
	}
	x := present*100/target - total
	if x < 0 {
		return 0
	}
	return x
}

// ClassesToAttend returns the minimum number of additional classes that must
// all be attended to reach target percent: ceil((r*total-present)/(1-r)) with
// r = target/100, clamped at 0. At target=100 it returns 0; use
// TargetReachable to tell "already there" apart from "unrecoverable".
func ClassesToAttend(total, present, target int) int {
	if total <= 0 {
		return 0
	}
	den := 100 - target
	if den <= 0 {
		return 0
	}
	num := target*total - 100*present
	if num <= 0 {
		return 0
	}
	return (num + den - 1) / den
}

// TargetReachable reports whether the target percentage can still be reached
// by attending future classes. Only a 100% target with an existing absence is
// unreachable; every lower target can be recovered eventually.
func TargetReachable(total, present, target int) bool {
	if target < 100 {
		return true
	}
	return present >= total
}
