package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/dto"
	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboard, error)
	Teacher(ctx context.Context, userID string) (*dto.TeacherDashboard, error)
	Student(ctx context.Context, userID string) (*dto.StudentDashboard, error)
	Parent(ctx context.Context, userID string) (*dto.ParentDashboard, error)
}

// DashboardHandler renders the role-specific dashboard.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Show dispatches on the session role and renders the matching view.
func (h *DashboardHandler) Show(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	ctx := c.Request.Context()

	switch principal.Role {
	case models.RoleAdmin:
		data, err := h.service.Admin(ctx)
		if err != nil {
			renderError(c, err)
			return
		}
		response.Page(c, http.StatusOK, "dashboard_admin.html", gin.H{
			"Title":     "Admin dashboard",
			"Principal": principal,
			"Dashboard": data,
		})
	case models.RoleTeacher:
		data, err := h.service.Teacher(ctx, principal.UserID)
		if err != nil {
			renderError(c, err)
			return
		}
		response.Page(c, http.StatusOK, "dashboard_teacher.html", gin.H{
			"Title":     "Teacher dashboard",
			"Principal": principal,
			"Dashboard": data,
		})
	case models.RoleStudent:
		data, err := h.service.Student(ctx, principal.UserID)
		if err != nil {
			renderError(c, err)
			return
		}
		response.Page(c, http.StatusOK, "dashboard_student.html", gin.H{
			"Title":     "Student dashboard",
			"Principal": principal,
			"Dashboard": data,
		})
	case models.RoleParent:
		data, err := h.service.Parent(ctx, principal.UserID)
		if err != nil {
			renderError(c, err)
			return
		}
		response.Page(c, http.StatusOK, "dashboard_parent.html", gin.H{
			"Title":     "Parent dashboard",
			"Principal": principal,
			"Dashboard": data,
		})
	default:
		renderError(c, appErrors.Clone(appErrors.ErrForbidden, "unknown account role"))
	}
}
