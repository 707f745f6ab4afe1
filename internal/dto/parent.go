package dto

import "github.com/greenfield-academy/portal/internal/models"

// ChildDetail backs the parent's per-child page.
type ChildDetail struct {
	Student    models.StudentInfo        `json:"student"`
	Classes    []models.ClassInfo        `json:"classes"`
	Grades     []models.GradeInfo        `json:"grades"`
	Averages   []models.ClassAverage     `json:"averages"`
	Attendance *models.AttendanceSummary `json:"attendance"`
}
