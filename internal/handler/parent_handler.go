package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/response"
)

// ParentHandler serves the parent-facing pages.
type ParentHandler struct {
	service *service.ParentService
}

// NewParentHandler constructs a parent handler.
func NewParentHandler(svc *service.ParentService) *ParentHandler {
	return &ParentHandler{service: svc}
}

// Children lists the students linked to the signed-in parent.
func (h *ParentHandler) Children(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	children, err := h.service.Children(c.Request.Context(), principal.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "parent_children.html", gin.H{
		"Title":     "My children",
		"Principal": principal,
		"Children":  children,
	})
}

// ChildDetail renders one linked child's classes, grades and attendance.
func (h *ParentHandler) ChildDetail(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	detail, err := h.service.ChildDetail(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "parent_child_detail.html", gin.H{
		"Title":     detail.Student.FullName(),
		"Principal": principal,
		"Detail":    detail,
	})
}
