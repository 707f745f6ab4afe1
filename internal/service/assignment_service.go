package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type asgRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Submit(ctx context.Context, submission *models.Submission) error
}

type asgClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	IsEnrolled(ctx context.Context, classID, studentID string) (bool, error)
}

type asgTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type asgStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type asgAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Due dates arrive either from a datetime-local input or a plain date
// input. A bare date means the end of that day.
var dueDateLayouts = []string{"2006-01-02T15:04", "2006-01-02"}

// CreateAssignmentRequest carries the teacher create-assignment form.
type CreateAssignmentRequest struct {
	ClassID       string `validate:"required"`
	TeacherUserID string `validate:"required"`
	Title         string `form:"title" validate:"required,min=2,max=200"`
	Description   string `form:"description" validate:"max=2000"`
	DueDate       string `form:"due_date" validate:"required"`
	IP            string
	UserAgent     string
}

// SubmitAssignmentRequest records a student's hand-in.
type SubmitAssignmentRequest struct {
	AssignmentID  string `validate:"required"`
	StudentUserID string `validate:"required"`
	IP            string
	UserAgent     string
}

// AssignmentService creates assignments and records submissions.
type AssignmentService struct {
	assignments asgRepository
	classes     asgClassRepository
	teachers    asgTeacherRepository
	students    asgStudentRepository
	audit       asgAuditRepository
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(
	assignments asgRepository,
	classes asgClassRepository,
	teachers asgTeacherRepository,
	students asgStudentRepository,
	audit asgAuditRepository,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		classes:     classes,
		teachers:    teachers,
		students:    students,
		audit:       audit,
		validator:   validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// Create adds an assignment to a class the teacher owns.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and due date are required")
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	teacher, err := s.teachers.FindByUserID(ctx, req.TeacherUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}
	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.TeacherID != teacher.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	assignment := &models.Assignment{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		DueDate:     due,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"class_id": assignment.ClassID,
		"title":    assignment.Title,
		"due_date": assignment.DueDate,
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &teacher.UserID,
		Action:     models.AuditActionAssignment,
		Resource:   "assignment",
		ResourceID: &assignment.ID,
		Detail:     detail,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record assignment audit log", zap.Error(err))
	}

	s.logger.Info("assignment created",
		zap.String("assignmentId", assignment.ID),
		zap.String("classId", assignment.ClassID),
		zap.Time("dueDate", assignment.DueDate),
	)
	return assignment, nil
}

// Submit records a hand-in for an enrolled student. Submitting twice is
// not an error; the original submission and its timestamp are kept. The
// returned flag reports whether this call created the submission.
func (s *AssignmentService) Submit(ctx context.Context, req SubmitAssignmentRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, "assignment is required")
	}

	student, err := s.students.FindByUserID(ctx, req.StudentUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	enrolled, err := s.classes.IsEnrolled(ctx, assignment.ClassID, student.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return false, appErrors.Clone(appErrors.ErrForbidden, "you are not enrolled in this class")
	}

	submission := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.assignments.Submit(ctx, submission); err != nil {
		if _, ok := uniqueViolationMessage(err); ok {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}

	s.logger.Info("assignment submitted",
		zap.String("assignmentId", assignment.ID),
		zap.String("studentId", student.ID),
	)
	return true, nil
}

func parseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if due, err := time.Parse(layout, value); err == nil {
			if layout == "2006-01-02" {
				due = due.Add(23*time.Hour + 59*time.Minute)
			}
			return due.UTC(), nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid due date")
}
