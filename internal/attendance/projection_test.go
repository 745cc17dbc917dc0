package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateWorstCase(t *testing.T) {
	records := []CourseRecord{{
		CourseCode:     "CS101",
		ComponentName:  "Lecture",
		TotalClasses:   40,
		PresentClasses: 28,
		Percentage:     70,
	}}

	results := Simulate(records, map[string]int{"CS101-Lecture": 5}, 75)
	require.Len(t, results, 1)
	got := results[0]

	// 28/45: planned misses inflate only the denominator.
	assert.Equal(t, 5, got.PlannedMisses)
	assert.InDelta(t, 62.22, got.ProjectedPercentage, 0.01)
	assert.False(t, got.IsSafe)
	assert.Equal(t, 0, got.MaxAdditionalSafeMisses, "headroom comes from the actual state")
	assert.True(t, got.TargetReachable)
}

func TestSimulateDefaultsAndClamps(t *testing.T) {
	records := []CourseRecord{
		{CourseCode: "CS101", ComponentName: "Lecture", TotalClasses: 40, PresentClasses: 28},
		{CourseCode: "MA102", ComponentName: "Lecture", TotalClasses: 30, PresentClasses: 27},
	}
	planned := map[string]int{"MA102-Lecture": -3}

	results := Simulate(records, planned, 60)
	require.Len(t, results, 2)

	// No entry in the map means zero planned misses.
	assert.Equal(t, 0, results[0].PlannedMisses)
	assert.InDelta(t, 70, results[0].ProjectedPercentage, 1e-9)
	assert.True(t, results[0].IsSafe)
	assert.Equal(t, 6, results[0].MaxAdditionalSafeMisses)

	// Negative input clamps to zero rather than shrinking the denominator.
	assert.Equal(t, 0, results[1].PlannedMisses)
	assert.InDelta(t, 90, results[1].ProjectedPercentage, 1e-9)
}

func TestSimulateHundredTargetUnreachable(t *testing.T) {
	records := []CourseRecord{{CourseCode: "PH103", ComponentName: "Lab", TotalClasses: 12, PresentClasses: 11}}
	results := Simulate(records, nil, 100)
	require.Len(t, results, 1)
	assert.False(t, results[0].TargetReachable)
	assert.False(t, results[0].IsSafe)
}

func TestSimulateCoursesIndependent(t *testing.T) {
	records := []CourseRecord{
		{CourseCode: "A", ComponentName: "L", TotalClasses: 10, PresentClasses: 9},
		{CourseCode: "B", ComponentName: "L", TotalClasses: 10, PresentClasses: 9},
	}
	results := Simulate(records, map[string]int{"A-L": 10}, 75)
	require.Len(t, results, 2)
	assert.False(t, results[0].IsSafe, "A absorbs its own misses")
	assert.True(t, results[1].IsSafe, "B is untouched by A's plan")
}
