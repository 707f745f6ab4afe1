package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/response"
)

// StudentHandler serves the student-facing pages.
type StudentHandler struct {
	grades      *service.GradeService
	assignments *service.AssignmentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(grades *service.GradeService, assignments *service.AssignmentService) *StudentHandler {
	return &StudentHandler{grades: grades, assignments: assignments}
}

// Grades renders the signed-in student's grades and per-class averages.
func (h *StudentHandler) Grades(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	grades, err := h.grades.ForStudent(c.Request.Context(), principal.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "student_grades.html", gin.H{
		"Title":     "My grades",
		"Principal": principal,
		"Grades":    grades,
	})
}

// GradeReportPDF downloads the student's grade report as a PDF attachment.
func (h *StudentHandler) GradeReportPDF(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	filename, payload, err := h.grades.ReportPDF(c.Request.Context(), principal.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// SubmitAssignment marks an assignment as turned in. Submitting twice
// keeps the original submission.
func (h *StudentHandler) SubmitAssignment(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	req := service.SubmitAssignmentRequest{
		AssignmentID:  c.Param("id"),
		StudentUserID: principal.UserID,
	}
	req.IP, req.UserAgent = clientMeta(c)

	created, err := h.assignments.Submit(c.Request.Context(), req)
	if err != nil {
		flashBack(c, "/dashboard", err)
		return
	}

	if !created {
		response.RedirectFlash(c, "/dashboard", "You already submitted this assignment.")
		return
	}
	response.RedirectFlash(c, "/dashboard", "Submission recorded.")
}
