package models

import "time"

// Grade is a numeric score a teacher entered for a student in a class.
type Grade struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Score     float64   `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GradeInfo extends a grade with display metadata.
type GradeInfo struct {
	Grade
	ClassName   string `db:"class_name" json:"class_name"`
	StudentName string `db:"student_name" json:"student_name"`
}

// ClassAverage is the mean score of one class a student attends.
type ClassAverage struct {
	ClassID   string  `db:"class_id" json:"class_id"`
	ClassName string  `db:"class_name" json:"class_name"`
	Average   float64 `db:"average" json:"average"`
	Count     int     `db:"count" json:"count"`
}
