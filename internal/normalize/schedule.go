package normalize

import (
	"strings"
	"time"

	"campuslens/internal/attendance"
	"campuslens/internal/portal"
)

// Schedule filters raw schedule rows down to one course and converts each
// match into an upcoming daywise entry. A row matches when its course code or
// name contains the target (case-insensitive) or its name equals the target
// name exactly. Rows whose date fails to parse keep a nil date instead of
// being dropped; the time slot is still worth showing.
func Schedule(rows []portal.ScheduleRow, courseCode, courseName string) []attendance.DaywiseEntry {
	targetCode := strings.ToLower(strings.TrimSpace(courseCode))
	targetName := strings.ToLower(strings.TrimSpace(courseName))

	var entries []attendance.DaywiseEntry
	for _, row := range rows {
		rowCode := strings.ToLower(row.CourseCode)
		rowName := strings.ToLower(row.CourseName)
		match := (targetCode != "" && strings.Contains(rowCode, targetCode)) ||
			(targetName != "" && strings.Contains(rowName, targetName)) ||
			(targetName != "" && rowName == targetName)
		if !match {
			continue
		}

		var date *string
		var day string
		if d, err := time.Parse("02/01/2006", strings.TrimSpace(row.LectureDate)); err == nil {
			iso := d.Format("2006-01-02")
			date = &iso
			day = d.Weekday().String()
		}

		entries = append(entries, attendance.DaywiseEntry{
			Date:       date,
			Day:        day,
			TimeSlot:   timeSlotOf(row.DateTime),
			Status:     attendance.StatusScheduled,
			IsUpcoming: true,
		})
	}
	return entries
}

// timeSlotOf strips the leading date token from the portal's combined
// "01/12/2025 : 02:20 PM - 03:10 PM" string, keeping the trailing time
// range. Strings without a separator pass through untouched.
func timeSlotOf(dateTime string) string {
	if i := strings.Index(dateTime, ":"); i >= 0 {
		return strings.TrimSpace(dateTime[i+1:])
	}
	return dateTime
}
