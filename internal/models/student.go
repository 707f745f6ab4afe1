package models

import "time"

// Student is the role profile backing a student account.
type Student struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	StudentNumber string     `db:"student_number" json:"student_number"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	GradeLevel    string     `db:"grade_level" json:"grade_level"`
	EnrolledAt    time.Time  `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// StudentInfo joins the profile with account display fields.
type StudentInfo struct {
	Student
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

// FullName joins the name parts for display.
func (s StudentInfo) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
