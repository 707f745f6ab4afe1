package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/service"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

type attendanceService interface {
	Roster(ctx context.Context, req service.RosterRequest) ([]models.AttendanceEntry, error)
	Save(ctx context.Context, req service.SaveAttendanceRequest) error
}

// AttendanceHandler exposes the JSON attendance API used by the class
// detail page.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Roster returns the day's roster for a class as a bare JSON array.
// Students without a record for the day come back as absent.
func (h *AttendanceHandler) Roster(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.Roster(c.Request.Context(), service.RosterRequest{
		TeacherUserID: principal.UserID,
		ClassID:       c.Param("classID"),
		Date:          c.Param("date"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if entries == nil {
		entries = []models.AttendanceEntry{}
	}

	response.Raw(c, http.StatusOK, entries)
}

// Save upserts the posted marks for a class and day.
func (h *AttendanceHandler) Save(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var marks []models.AttendanceMark
	if err := c.ShouldBindJSON(&marks); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload"))
		return
	}

	req := service.SaveAttendanceRequest{
		TeacherUserID: principal.UserID,
		ClassID:       c.Param("classID"),
		Date:          c.Param("date"),
		Marks:         marks,
	}
	req.IP, req.UserAgent = clientMeta(c)

	if err := h.service.Save(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Raw(c, http.StatusOK, gin.H{"success": true})
}
