// Package normalize converts raw portal payloads into canonical attendance
// records. One function per payload kind; each is total over decodable input
// and only structurally nonsensical data (non-numeric counts) comes back as
// an error. Metrics and merge logic never see upstream shapes.
package normalize

import (
	"fmt"
	"strings"

	"campuslens/internal/attendance"
	"campuslens/internal/portal"
)

// Profile extracts the student profile subset from a summary payload.
func Profile(p *portal.SummaryPayload) attendance.StudentProfile {
	return attendance.StudentProfile{
		FullName:           p.Data.FullName,
		RegistrationNumber: p.Data.RegistrationNumber,
		BranchShortName:    p.Data.BranchShortName,
		SemesterName:       p.Data.SemesterName,
		AdmissionBatchName: p.Data.AdmissionBatchName,
	}
}

// CourseList converts the portal course roster into canonical records.
// Percentages are recomputed from the counts; the upstream percentage field
// is never trusted. Rows with negative counts are invalid and dropped, and
// the dropped count is reported so callers can log the degradation instead
// of silently including garbage.
func CourseList(p *portal.SummaryPayload) ([]attendance.CourseRecord, int, error) {
	records := make([]attendance.CourseRecord, 0, len(p.Data.Components))
	dropped := 0
	for _, row := range p.Data.Components {
		total, err := row.NumberOfPeriods.Int()
		if err != nil {
			return nil, dropped, fmt.Errorf("%w: course %s: %v", portal.ErrBadShape, row.CourseCode, err)
		}
		present, err := row.NumberOfPresent.Int()
		if err != nil {
			return nil, dropped, fmt.Errorf("%w: course %s: %v", portal.ErrBadShape, row.CourseCode, err)
		}
		if total < 0 || present < 0 {
			dropped++
			continue
		}
		if present > total {
			// Upstream sometimes reports stale totals; clamp rather than
			// emit a record violating present <= total.
			present = total
		}
		records = append(records, attendance.CourseRecord{
			CourseCode:     row.CourseCode,
			CourseName:     row.CourseName,
			ComponentName:  row.ComponentName,
			TotalClasses:   total,
			PresentClasses: present,
			Percentage:     attendance.Percentage(total, present),
			CourseCompID:   row.CourseCompID,
			CourseID:       row.CourseID,
			SessionID:      p.Data.SessionID,
			StudentID:      p.Data.StudentID,
		})
	}
	return records, dropped, nil
}

// Daywise maps past daywise rows onto canonical entries. Unknown status
// vocabulary maps to Unknown rather than failing the whole payload.
func Daywise(p *portal.DaywisePayload) []attendance.DaywiseEntry {
	rows := p.Data.AttendanceDetails
	entries := make([]attendance.DaywiseEntry, 0, len(rows))
	for _, row := range rows {
		var date *string
		if row.AbsentPresentDate != nil && *row.AbsentPresentDate != "" {
			d := *row.AbsentPresentDate
			date = &d
		}
		entries = append(entries, attendance.DaywiseEntry{
			Date:       date,
			Day:        row.DayName,
			TimeSlot:   row.TimeSlot,
			Status:     statusFor(row.PresentAbsent),
			IsUpcoming: false,
		})
	}
	return entries
}

func statusFor(raw string) attendance.Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "P", "PRESENT":
		return attendance.StatusPresent
	case "A", "ABSENT":
		return attendance.StatusAbsent
	case "S", "SCHEDULED":
		return attendance.StatusScheduled
	default:
		return attendance.StatusUnknown
	}
}
