package portal

import (
	"bytes"
	"fmt"
	"strconv"
)

// Raw payload shapes as the portal sends them. The wire protocol is owned by
// the portal; these structs are deliberately tolerant (nullable fields,
// counts that arrive as numbers or quoted numbers) and normalization into
// canonical records happens in internal/normalize.

// Count holds an upstream class counter without committing to a JSON type.
// The portal has been seen sending both 42 and "42".
type Count struct {
	raw string
}

// UnmarshalJSON accepts a JSON number, a quoted number, or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		c.raw = ""
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	c.raw = string(data)
	return nil
}

// Int parses the counter. The zero Count (absent field, null) is 0.
func (c Count) Int() (int, error) {
	if c.raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(c.raw)
	if err != nil {
		return 0, fmt.Errorf("non-numeric count %q", c.raw)
	}
	return n, nil
}

// SummaryPayload is the response of the course/component attendance endpoint.
type SummaryPayload struct {
	Data struct {
		FullName           string `json:"fullName"`
		RegistrationNumber string `json:"registrationNumber"`
		BranchShortName    string `json:"branchShortName"`
		SemesterName       string `json:"semesterName"`
		AdmissionBatchName string `json:"admissionBatchName"`
		StudentID          *int64 `json:"studentId"`
		SessionID          *int64 `json:"sessionId"`

		Components []CourseComponentRow `json:"attendanceCourseComponentInfoList"`
	} `json:"data"`
}

// CourseComponentRow is one course component's counters as the portal
// reports them. PresentPercentage is ignored downstream on purpose; the
// canonical percentage is recomputed from the counts.
type CourseComponentRow struct {
	CourseCode        string  `json:"courseCode"`
	CourseName        string  `json:"courseName"`
	ComponentName     string  `json:"componentName"`
	CourseCompID      int64   `json:"courseCompId"`
	CourseID          int64   `json:"courseId"`
	NumberOfPeriods   Count   `json:"numberOfPeriods"`
	NumberOfPresent   Count   `json:"numberOfPresent"`
	PresentPercentage float64 `json:"presentPercentageWith"`
}

// DaywisePayload is the response of the per-component daywise endpoint.
type DaywisePayload struct {
	Data struct {
		AttendanceDetails []DaywiseRow `json:"attendanceDetails"`
	} `json:"data"`
}

// DaywiseRow is one past day's record. Dates are ISO-8601 when present.
type DaywiseRow struct {
	AbsentPresentDate *string `json:"absentPresentDate"`
	DayName           string  `json:"dayName"`
	TimeSlot          string  `json:"timeSlot"`
	PresentAbsent     string  `json:"presentAbsent"`
}

// SchedulePayload is the response of the weekly schedule endpoint.
type SchedulePayload struct {
	Data []ScheduleRow `json:"data"`
}

// ScheduleRow is one upcoming class slot. LectureDate is day/month/year text
// ("01/12/2025") and DateTime is the date repeated ahead of the time range
// ("01/12/2025 : 02:20 PM - 03:10 PM").
type ScheduleRow struct {
	CourseName  string `json:"courseName"`
	CourseCode  string `json:"courseCode"`
	LectureDate string `json:"lectureDate"`
	DateTime    string `json:"dateTime"`
	RoomName    string `json:"roomName"`
}
