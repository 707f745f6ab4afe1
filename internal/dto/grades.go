package dto

import "github.com/greenfield-academy/portal/internal/models"

// StudentGrades backs the student grades page: every recorded score
// plus the per-class averages.
type StudentGrades struct {
	Grades   []models.GradeInfo    `json:"grades"`
	Averages []models.ClassAverage `json:"averages"`
}
