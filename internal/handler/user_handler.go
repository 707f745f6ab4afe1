package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// UserHandler serves the admin user management pages.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// List renders the user table with optional role and search filters.
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter

	if role := models.Role(c.Query("role")); role.Valid() {
		filter.Role = &role
	}
	filter.Search = strings.TrimSpace(c.Query("q"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}

	users, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "admin_users.html", gin.H{
		"Title":      "Users",
		"Principal":  principalFromContext(c),
		"Users":      users,
		"Pagination": pagination,
		"Role":       c.Query("role"),
		"Search":     filter.Search,
	})
}

// CreatePage renders the provisioning form.
func (h *UserHandler) CreatePage(c *gin.Context) {
	response.Page(c, http.StatusOK, "admin_create_user.html", gin.H{
		"Title":     "Create user",
		"Principal": principalFromContext(c),
		"Roles":     []models.Role{models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleParent},
	})
}

// Create provisions an account plus its role profile from the posted form.
func (h *UserHandler) Create(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	var req service.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, "/admin/create_user", appErrors.Clone(appErrors.ErrValidation, "Please fill in the required fields."))
		return
	}
	req.IP, req.UserAgent = clientMeta(c)

	user, err := h.service.Create(c.Request.Context(), req, principal.UserID)
	if err != nil {
		flashBack(c, "/admin/create_user", err)
		return
	}

	response.RedirectFlash(c, "/admin/users", "User "+user.Username+" created.")
}
