package models

import "time"

// Assignment is homework attached to a class with a due date.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AssignmentInfo extends an assignment with its class name and, when
// loaded for a specific student, that student's submission state.
type AssignmentInfo struct {
	Assignment
	ClassName   string     `db:"class_name" json:"class_name"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
}

// Submitted reports whether the loaded student has handed the work in.
func (a AssignmentInfo) Submitted() bool {
	return a.SubmittedAt != nil
}

// Submission marks that a student handed in an assignment.
type Submission struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// StudentUpcoming pairs an upcoming assignment with the enrolled
// student it was loaded for.
type StudentUpcoming struct {
	StudentID string `db:"student_id" json:"student_id"`
	AssignmentInfo
}

// ReminderTarget is one pending submission picked up by the due date
// reminder sweep: a student who has not handed in an assignment that is
// about to fall due.
type ReminderTarget struct {
	AssignmentID string    `db:"assignment_id"`
	Title        string    `db:"title"`
	DueDate      time.Time `db:"due_date"`
	ClassName    string    `db:"class_name"`
	StudentID    string    `db:"student_id"`
	StudentName  string    `db:"student_name"`
	StudentEmail string    `db:"student_email"`
}
