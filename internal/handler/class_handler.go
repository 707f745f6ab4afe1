package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/service"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// ClassHandler serves the admin class management pages.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List renders all classes together with the create-class form.
func (h *ClassHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	classes, err := h.service.List(ctx)
	if err != nil {
		renderError(c, err)
		return
	}
	teachers, err := h.service.Teachers(ctx)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "admin_classes.html", gin.H{
		"Title":     "Classes",
		"Principal": principalFromContext(c),
		"Classes":   classes,
		"Teachers":  teachers,
	})
}

// Create adds a class from the posted form.
func (h *ClassHandler) Create(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	var req service.CreateClassRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, "/admin/classes", appErrors.Clone(appErrors.ErrValidation, "Please fill in the required fields."))
		return
	}
	req.ActorID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		flashBack(c, "/admin/classes", err)
		return
	}

	response.RedirectFlash(c, "/admin/classes", "Class "+class.Name+" created.")
}

// Enroll adds a student to the class roster by student number.
func (h *ClassHandler) Enroll(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	var req service.EnrollStudentRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, "/admin/classes", appErrors.Clone(appErrors.ErrValidation, "Please provide a student number."))
		return
	}
	req.ClassID = c.Param("id")
	req.ActorID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	if err := h.service.Enroll(c.Request.Context(), req); err != nil {
		flashBack(c, "/admin/classes", err)
		return
	}

	response.RedirectFlash(c, "/admin/classes", "Student enrolled.")
}

// LinkGuardian associates a parent account with a student.
func (h *ClassHandler) LinkGuardian(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	var req service.LinkGuardianRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, "/admin/classes", appErrors.Clone(appErrors.ErrValidation, "Please provide the parent's username."))
		return
	}
	req.StudentID = c.Param("id")
	req.ActorID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	if err := h.service.LinkGuardian(c.Request.Context(), req); err != nil {
		flashBack(c, "/admin/classes", err)
		return
	}

	response.RedirectFlash(c, "/admin/classes", "Guardian linked.")
}
