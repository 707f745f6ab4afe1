package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is a single per-student, per-class, per-day record.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceEntry is the wire shape of one roster row in the attendance
// API: every enrolled student appears, defaulting to absent when no
// record exists yet for the day.
type AttendanceEntry struct {
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
}

// AttendanceMark is one item of the attendance API save payload.
type AttendanceMark struct {
	StudentID string           `json:"student_id" validate:"required,uuid4"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceKey names the (student, class) pair a record belongs to.
type AttendanceKey struct {
	StudentID string `db:"student_id"`
	ClassID   string `db:"class_id"`
}

// AttendanceSummary aggregates a student's records for display.
type AttendanceSummary struct {
	Present int `db:"present" json:"present"`
	Absent  int `db:"absent" json:"absent"`
	Late    int `db:"late" json:"late"`
	Excused int `db:"excused" json:"excused"`
	Total   int `db:"total" json:"total"`
}
