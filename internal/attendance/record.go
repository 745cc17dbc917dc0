package attendance

import "fmt"

// Status classifies a single daywise entry.
type Status string

const (
	StatusPresent   Status = "Present"
	StatusAbsent    Status = "Absent"
	StatusScheduled Status = "Scheduled"
	StatusUnknown   Status = "Unknown"
)

// StudentProfile is the subset of portal profile fields returned with a summary.
type StudentProfile struct {
	FullName           string `json:"fullName"`
	RegistrationNumber string `json:"registrationNumber"`
	BranchShortName    string `json:"branchShortName"`
	SemesterName       string `json:"semesterName"`
	AdmissionBatchName string `json:"admissionBatchName"`
}

// CourseRecord is the canonical attendance record for one course component.
// Percentage is always recomputed from the counts, never copied from upstream.
type CourseRecord struct {
	CourseCode     string  `json:"courseCode"`
	CourseName     string  `json:"courseName"`
	ComponentName  string  `json:"componentName"`
	TotalClasses   int     `json:"totalClasses"`
	PresentClasses int     `json:"presentClasses"`
	Percentage     float64 `json:"percentage"`

	// Correlation identifiers needed to fetch daywise/schedule detail
	// for this specific course component.
	CourseCompID int64  `json:"courseComponentId"`
	CourseID     int64  `json:"courseId"`
	SessionID    *int64 `json:"sessionId"`
	StudentID    *int64 `json:"studentId"`
}

// Key returns the stable composite key used to address a record in
// projection inputs: course code (or id when the code is blank) plus
// component name.
func (r CourseRecord) Key() string {
	code := r.CourseCode
	if code == "" {
		code = fmt.Sprintf("C%d", r.CourseID)
	}
	return code + "-" + r.ComponentName
}

// DaywiseEntry is one calendar day's attendance record, or one scheduled
// upcoming class after schedule normalization. Date is ISO-8601 and nil when
// the portal did not supply one.
type DaywiseEntry struct {
	Date       *string `json:"date"`
	Day        string  `json:"day"`
	TimeSlot   string  `json:"timeSlot"`
	Status     Status  `json:"status"`
	IsUpcoming bool    `json:"isUpcoming"`
}
