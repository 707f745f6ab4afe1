package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/service"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// AnnouncementHandler serves the admin announcement and event pages.
type AnnouncementHandler struct {
	service *service.AnnouncementService
}

// NewAnnouncementHandler constructs an announcement handler.
func NewAnnouncementHandler(svc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// Announcements renders all announcements with the create form.
func (h *AnnouncementHandler) Announcements(c *gin.Context) {
	announcements, err := h.service.Announcements(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "admin_announcements.html", gin.H{
		"Title":         "Announcements",
		"Principal":     principalFromContext(c),
		"Announcements": announcements,
	})
}

// CreateAnnouncement publishes a new announcement.
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	var req service.CreateAnnouncementRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, "/admin/announcements", appErrors.Clone(appErrors.ErrValidation, "Please fill in a title and body."))
		return
	}
	req.ActorID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	if _, err := h.service.CreateAnnouncement(c.Request.Context(), req); err != nil {
		flashBack(c, "/admin/announcements", err)
		return
	}

	response.RedirectFlash(c, "/admin/announcements", "Announcement published.")
}

// Events renders all school events with the create form.
func (h *AnnouncementHandler) Events(c *gin.Context) {
	events, err := h.service.Events(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	response.Page(c, http.StatusOK, "admin_events.html", gin.H{
		"Title":     "Events",
		"Principal": principalFromContext(c),
		"Events":    events,
	})
}

// CreateEvent schedules a new school event.
func (h *AnnouncementHandler) CreateEvent(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
		return
	}

	var req service.CreateEventRequest
	if err := c.ShouldBind(&req); err != nil {
		flashBack(c, "/admin/events", appErrors.Clone(appErrors.ErrValidation, "Please fill in a title and start time."))
		return
	}
	req.ActorID = principal.UserID
	req.IP, req.UserAgent = clientMeta(c)

	if _, err := h.service.CreateEvent(c.Request.Context(), req); err != nil {
		flashBack(c, "/admin/events", err)
		return
	}

	response.RedirectFlash(c, "/admin/events", "Event scheduled.")
}
