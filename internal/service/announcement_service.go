package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type annRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	ListAll(ctx context.Context) ([]models.Announcement, error)
}

type annEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	ListAll(ctx context.Context) ([]models.Event, error)
}

type annAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateAnnouncementRequest carries the admin publish form.
type CreateAnnouncementRequest struct {
	Title     string `form:"title" validate:"required,min=2,max=200"`
	Body      string `form:"body" validate:"required,max=5000"`
	ActorID   string `validate:"required"`
	IP        string
	UserAgent string
}

// CreateEventRequest carries the admin schedule-event form.
type CreateEventRequest struct {
	Title     string `form:"title" validate:"required,min=2,max=200"`
	Location  string `form:"location" validate:"max=200"`
	StartsAt  string `form:"starts_at" validate:"required"`
	ActorID   string `validate:"required"`
	IP        string
	UserAgent string
}

// AnnouncementService publishes school-wide announcements and calendar
// events.
type AnnouncementService struct {
	announcements annRepository
	events        annEventRepository
	audit         annAuditRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(
	announcements annRepository,
	events annEventRepository,
	audit annAuditRepository,
	logger *zap.Logger,
) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{
		announcements: announcements,
		events:        events,
		audit:         audit,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Announcements returns every announcement, newest first.
func (s *AnnouncementService) Announcements(ctx context.Context) ([]models.Announcement, error) {
	announcements, err := s.announcements.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}
	return announcements, nil
}

// Events returns every event, soonest first.
func (s *AnnouncementService) Events(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}
	return events, nil
}

// CreateAnnouncement publishes an announcement.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and body are required")
	}

	announcement := &models.Announcement{
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		CreatedBy: &req.ActorID,
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	s.writeAudit(ctx, req.ActorID, models.AuditActionAnnouncement, "announcement", announcement.ID, map[string]interface{}{
		"title": announcement.Title,
	}, req.IP, req.UserAgent)

	s.logger.Info("announcement published", zap.String("announcementId", announcement.ID))
	return announcement, nil
}

// CreateEvent schedules a calendar event.
func (s *AnnouncementService) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and start time are required")
	}
	startsAt, err := parseEventStart(req.StartsAt)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:     strings.TrimSpace(req.Title),
		Location:  strings.TrimSpace(req.Location),
		StartsAt:  startsAt,
		CreatedBy: &req.ActorID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.writeAudit(ctx, req.ActorID, models.AuditActionEvent, "event", event.ID, map[string]interface{}{
		"title":     event.Title,
		"starts_at": event.StartsAt,
	}, req.IP, req.UserAgent)

	s.logger.Info("event scheduled", zap.String("eventId", event.ID), zap.Time("startsAt", event.StartsAt))
	return event, nil
}

func (s *AnnouncementService) writeAudit(ctx context.Context, actorID, action, resource, resourceID string, detail map[string]interface{}, ip, userAgent string) {
	payload, _ := json.Marshal(detail)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		Detail:     payload,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.Error(err), zap.String("action", action))
	}
}

// parseEventStart accepts a datetime-local value or a plain date. A
// bare date means the start of that day.
func parseEventStart(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02"} {
		if startsAt, err := time.Parse(layout, value); err == nil {
			return startsAt.UTC(), nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid start time")
}
