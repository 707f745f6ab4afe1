package models

import "time"

// Class groups students under a single teacher.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassInfo extends a class with display metadata.
type ClassInfo struct {
	Class
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}

// RosterEntry is one student row on a class roster.
type RosterEntry struct {
	StudentID     string `db:"student_id" json:"student_id"`
	StudentNumber string `db:"student_number" json:"student_number"`
	StudentName   string `db:"student_name" json:"student_name"`
	Email         string `db:"email" json:"email"`
	GradeLevel    string `db:"grade_level" json:"grade_level"`
}
