package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

const attendanceDateLayout = "2006-01-02"

type attendanceRepository interface {
	RosterForClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceEntry, error)
	SaveBatch(ctx context.Context, classID string, date time.Time, marks []models.AttendanceMark) error
	SummaryForStudent(ctx context.Context, studentID string) (*models.AttendanceSummary, error)
}

type attTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type attClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type attAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RosterRequest identifies a class-day roster read.
type RosterRequest struct {
	TeacherUserID string `validate:"required"`
	ClassID       string `validate:"required"`
	Date          string `validate:"required"`
}

// SaveAttendanceRequest carries a batch of attendance marks for one
// class and day.
type SaveAttendanceRequest struct {
	TeacherUserID string                  `validate:"required"`
	ClassID       string                  `validate:"required"`
	Date          string                  `validate:"required"`
	Marks         []models.AttendanceMark `validate:"dive"`
	IP            string
	UserAgent     string
}

// AttendanceService reads and records class-day attendance on behalf
// of the owning teacher.
type AttendanceService struct {
	attendance attendanceRepository
	teachers   attTeacherRepository
	classes    attClassRepository
	audit      attAuditRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(
	attendance attendanceRepository,
	teachers attTeacherRepository,
	classes attClassRepository,
	audit attAuditRepository,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		teachers:   teachers,
		classes:    classes,
		audit:      audit,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Roster returns every enrolled student with that day's status,
// defaulting to absent where nothing is recorded.
func (s *AttendanceService) Roster(ctx context.Context, req RosterRequest) ([]models.AttendanceEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class and date are required")
	}
	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedClass(ctx, req.TeacherUserID, req.ClassID); err != nil {
		return nil, err
	}

	entries, err := s.attendance.RosterForClassDate(ctx, req.ClassID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return entries, nil
}

// Save upserts the submitted marks for one class-day inside a single
// transaction. An empty batch is a no-op success.
func (s *AttendanceService) Save(ctx context.Context, req SaveAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload")
	}
	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return err
	}
	for _, mark := range req.Marks {
		if !mark.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "invalid attendance status: "+string(mark.Status))
		}
	}

	teacher, err := s.ownedClass(ctx, req.TeacherUserID, req.ClassID)
	if err != nil {
		return err
	}
	if len(req.Marks) == 0 {
		return nil
	}

	if err := s.attendance.SaveBatch(ctx, req.ClassID, date, req.Marks); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"date":  req.Date,
		"marks": len(req.Marks),
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &teacher.UserID,
		Action:     models.AuditActionAttendance,
		Resource:   "attendance",
		ResourceID: &req.ClassID,
		Detail:     detail,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record attendance audit log", zap.Error(err))
	}

	s.logger.Info("attendance recorded",
		zap.String("classId", req.ClassID),
		zap.String("date", req.Date),
		zap.Int("marks", len(req.Marks)),
	)
	return nil
}

// StudentSummary aggregates a student's attendance counts by status.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	summary, err := s.attendance.SummaryForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	return summary, nil
}

// ownedClass resolves the acting teacher and confirms the class is
// theirs.
func (s *AttendanceService) ownedClass(ctx context.Context, teacherUserID, classID string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByUserID(ctx, teacherUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.TeacherID != teacher.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not teach this class")
	}
	return teacher, nil
}

func parseAttendanceDate(value string) (time.Time, error) {
	date, err := time.Parse(attendanceDateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}
