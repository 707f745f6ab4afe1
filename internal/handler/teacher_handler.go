package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// TeacherHandler serves the teacher-facing class pages.
type TeacherHandler struct {
	classes     *service.ClassService
	assignments *service.AssignmentService
	grades      *service.GradeService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(classes *service.ClassService, assignments *service.AssignmentService, grades *service.GradeService) *TeacherHandler {
	return &TeacherHandler{classes: classes, assignments: assignments, grades: grades}
}

// Classes lists the classes the signed-in teacher owns.
func (h *TeacherHandler) Classes(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	classes, err := h.classes.OwnedClasses(c.Request.Context(), principal.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "teacher_classes.html", gin.H{
		"Title":     "My classes",
		"Principal": principal,
		"Classes":   classes,
	})
}

// ClassDetail renders one owned class: roster, assignments and grades.
func (h *TeacherHandler) ClassDetail(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	detail, err := h.classes.Detail(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "teacher_class_detail.html", gin.H{
		"Title":     detail.Class.Name,
		"Principal": principal,
		"Detail":    detail,
		"Today":     time.Now().Format("2006-01-02"),
		"Statuses":  []models.AttendanceStatus{models.AttendanceStatusPresent, models.AttendanceStatusAbsent, models.AttendanceStatusLate, models.AttendanceStatusExcused},
	})
}

// CreateAssignment posts a new assignment for an owned class.
func (h *TeacherHandler) CreateAssignment(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	classID := c.Param("id")
	back := "/teacher/class/" + classID

	var req service.CreateAssignmentRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, back, appErrors.Clone(appErrors.ErrValidation, "Please fill in a title and due date."))
		return
	}
	req.ClassID = classID
	req.TeacherUserID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	if _, err := h.assignments.Create(c.Request.Context(), req); err != nil {
		flashBack(c, back, err)
		return
	}

	response.RedirectFlash(c, back, "Assignment created.")
}

// RecordGrade stores a score for a student in an owned class.
func (h *TeacherHandler) RecordGrade(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	classID := c.Param("id")
	back := "/teacher/class/" + classID

	var req service.RecordGradeRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, back, appErrors.Clone(appErrors.ErrValidation, "Please pick a student and a score between 0 and 100."))
		return
	}
	req.ClassID = classID
	req.TeacherUserID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	if _, err := h.grades.Record(c.Request.Context(), req); err != nil {
		flashBack(c, back, err)
		return
	}

	response.RedirectFlash(c, back, "Grade recorded.")
}

// RosterCSV downloads the class roster as a CSV attachment.
func (h *TeacherHandler) RosterCSV(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	filename, payload, err := h.classes.RosterCSV(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}
