package dto

import "github.com/greenfield-academy/portal/internal/models"

// AdminDashboard aggregates the admin landing view.
type AdminDashboard struct {
	Counts        AdminCounts           `json:"counts"`
	Announcements []models.Announcement `json:"announcements"`
	Events        []models.Event        `json:"events"`
}

// AdminCounts carries the headline totals.
type AdminCounts struct {
	Users    int `json:"users"`
	Students int `json:"students"`
	Teachers int `json:"teachers"`
	Classes  int `json:"classes"`
}

// TeacherDashboard aggregates the teacher landing view.
type TeacherDashboard struct {
	TeacherID     string                `json:"teacherId"`
	Classes       []models.ClassInfo    `json:"classes"`
	Announcements []models.Announcement `json:"announcements"`
}

// StudentDashboard aggregates the student landing view.
type StudentDashboard struct {
	StudentID     string                  `json:"studentId"`
	Classes       []models.ClassInfo      `json:"classes"`
	Upcoming      []models.AssignmentInfo `json:"upcoming"`
	Announcements []models.Announcement   `json:"announcements"`
}

// ParentDashboard aggregates the parent landing view.
type ParentDashboard struct {
	ParentID      string                `json:"parentId"`
	Children      []models.StudentInfo  `json:"children"`
	Upcoming      []ChildAssignment     `json:"upcoming"`
	Announcements []models.Announcement `json:"announcements"`
}

// ChildAssignment is an upcoming assignment tagged with the child it
// belongs to, for the flattened parent view.
type ChildAssignment struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	models.AssignmentInfo
}
