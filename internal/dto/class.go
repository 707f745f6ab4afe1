package dto

import "github.com/greenfield-academy/portal/internal/models"

// ClassDetail backs the teacher's class page.
type ClassDetail struct {
	Class       models.Class         `json:"class"`
	Roster      []models.RosterEntry `json:"roster"`
	Assignments []models.Assignment  `json:"assignments"`
	Grades      []models.GradeInfo   `json:"grades"`
}
