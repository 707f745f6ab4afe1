package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/dto"
	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/export"
)

type classRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListAll(ctx context.Context) ([]models.ClassInfo, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassInfo, error)
	Roster(ctx context.Context, classID string) ([]models.RosterEntry, error)
	Enroll(ctx context.Context, classID, studentID string) error
}

type classTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListAll(ctx context.Context) ([]models.TeacherInfo, error)
}

type classStudentRepository interface {
	FindByNumber(ctx context.Context, number string) (*models.Student, error)
	FindInfoByID(ctx context.Context, id string) (*models.StudentInfo, error)
}

type classParentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
	Link(ctx context.Context, studentID, parentID string) error
}

type classUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type classAssignmentRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Assignment, error)
}

type classGradeRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.GradeInfo, error)
}

type classAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type rosterExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

// CreateClassRequest carries the admin create-class form.
type CreateClassRequest struct {
	Name      string `form:"name" validate:"required,min=2,max=120"`
	TeacherID string `form:"teacher_id" validate:"required"`
	ActorID   string `validate:"required"`
	IP        string
	UserAgent string
}

// EnrollStudentRequest adds a student to a class roster by student
// number.
type EnrollStudentRequest struct {
	ClassID       string `validate:"required"`
	StudentNumber string `form:"student_number" validate:"required"`
	ActorID       string `validate:"required"`
	IP            string
	UserAgent     string
}

// LinkGuardianRequest associates a parent account with a student.
type LinkGuardianRequest struct {
	StudentID      string `validate:"required"`
	ParentUsername string `form:"parent_username" validate:"required"`
	ActorID        string `validate:"required"`
	IP             string
	UserAgent      string
}

// ClassServiceParams groups constructor dependencies.
type ClassServiceParams struct {
	Classes     classRepository
	Teachers    classTeacherRepository
	Students    classStudentRepository
	Parents     classParentRepository
	Users       classUserRepository
	Assignments classAssignmentRepository
	Grades      classGradeRepository
	Audit       classAuditRepository
	Cache       dashboardInvalidator
	Exporter    rosterExporter
	Logger      *zap.Logger
}

// ClassService manages classes, rosters, and guardian links.
type ClassService struct {
	classes     classRepository
	teachers    classTeacherRepository
	students    classStudentRepository
	parents     classParentRepository
	users       classUserRepository
	assignments classAssignmentRepository
	grades      classGradeRepository
	audit       classAuditRepository
	cache       dashboardInvalidator
	exporter    rosterExporter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(params ClassServiceParams) *ClassService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{
		classes:     params.Classes,
		teachers:    params.Teachers,
		students:    params.Students,
		parents:     params.Parents,
		users:       params.Users,
		assignments: params.Assignments,
		grades:      params.Grades,
		audit:       params.Audit,
		cache:       params.Cache,
		exporter:    params.Exporter,
		validator:   validator.New(),
		logger:      logger,
	}
}

// List returns every class with teacher and enrollment metadata.
func (s *ClassService) List(ctx context.Context) ([]models.ClassInfo, error) {
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	return classes, nil
}

// Teachers returns every teacher, for the create-class form.
func (s *ClassService) Teachers(ctx context.Context) ([]models.TeacherInfo, error) {
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	return teachers, nil
}

// Create adds a class assigned to an existing teacher.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name and teacher are required")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "selected teacher does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	class := &models.Class{
		Name:      strings.TrimSpace(req.Name),
		TeacherID: req.TeacherID,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.writeAudit(ctx, req.ActorID, models.AuditActionClassCreate, "class", class.ID, map[string]interface{}{
		"name":       class.Name,
		"teacher_id": class.TeacherID,
	}, req.IP, req.UserAgent)
	s.cache.Invalidate(ctx, adminDashboardCacheKey)

	s.logger.Info("class created", zap.String("classId", class.ID), zap.String("name", class.Name))
	return class, nil
}

// Enroll adds a student, looked up by student number, to a class.
func (s *ClassService) Enroll(ctx context.Context, req EnrollStudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "student number is required")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	student, err := s.students.FindByNumber(ctx, strings.TrimSpace(req.StudentNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "no student with that student number")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := s.classes.Enroll(ctx, req.ClassID, student.ID); err != nil {
		if _, ok := uniqueViolationMessage(err); ok {
			return appErrors.Clone(appErrors.ErrAlreadyExists, "student is already enrolled in this class")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}

	s.writeAudit(ctx, req.ActorID, models.AuditActionEnrollment, "class", req.ClassID, map[string]interface{}{
		"student_id": student.ID,
		"change":     "enrolled",
	}, req.IP, req.UserAgent)

	s.logger.Info("student enrolled",
		zap.String("classId", req.ClassID),
		zap.String("studentId", student.ID),
	)
	return nil
}

// LinkGuardian associates a parent account with a student.
func (s *ClassService) LinkGuardian(ctx context.Context, req LinkGuardianRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "parent username is required")
	}

	student, err := s.students.FindInfoByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	account, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(req.ParentUsername)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "no account with that username")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if account.Role != models.RoleParent {
		return appErrors.Clone(appErrors.ErrValidation, "account is not a parent")
	}

	parent, err := s.parents.FindByUserID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "parent profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent profile")
	}

	if err := s.parents.Link(ctx, student.ID, parent.ID); err != nil {
		if _, ok := uniqueViolationMessage(err); ok {
			return appErrors.Clone(appErrors.ErrAlreadyExists, "guardian is already linked to this student")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link guardian")
	}

	s.writeAudit(ctx, req.ActorID, models.AuditActionEnrollment, "student", student.ID, map[string]interface{}{
		"parent_id": parent.ID,
		"change":    "guardian_linked",
	}, req.IP, req.UserAgent)

	s.logger.Info("guardian linked",
		zap.String("studentId", student.ID),
		zap.String("parentId", parent.ID),
	)
	return nil
}

// OwnedClasses returns the classes taught by the signed-in teacher.
func (s *ClassService) OwnedClasses(ctx context.Context, teacherUserID string) ([]models.ClassInfo, error) {
	teacher, err := s.resolveTeacher(ctx, teacherUserID)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	return classes, nil
}

// Detail loads the roster, assignments, and grades for an owned class.
// Classes the teacher does not own are reported as not found.
func (s *ClassService) Detail(ctx context.Context, teacherUserID, classID string) (*dto.ClassDetail, error) {
	class, err := s.ownedClass(ctx, teacherUserID, classID)
	if err != nil {
		return nil, err
	}

	roster, err := s.classes.Roster(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	grades, err := s.grades.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	return &dto.ClassDetail{
		Class:       *class,
		Roster:      roster,
		Assignments: assignments,
		Grades:      grades,
	}, nil
}

// RosterCSV renders an owned class roster as a CSV download.
func (s *ClassService) RosterCSV(ctx context.Context, teacherUserID, classID string) (string, []byte, error) {
	class, err := s.ownedClass(ctx, teacherUserID, classID)
	if err != nil {
		return "", nil, err
	}
	roster, err := s.classes.Roster(ctx, classID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Roster: %s", class.Name),
		Headers: []string{"Student Number", "Name", "Email", "Grade Level"},
	}
	for _, entry := range roster {
		data.Rows = append(data.Rows, []string{entry.StudentNumber, entry.StudentName, entry.Email, entry.GradeLevel})
	}

	payload, err := s.exporter.Render(data)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export")
	}

	name := strings.ReplaceAll(strings.ToLower(class.Name), " ", "_")
	filename := fmt.Sprintf("roster_%s_%s.csv", name, time.Now().UTC().Format("20060102"))
	return filename, payload, nil
}

func (s *ClassService) resolveTeacher(ctx context.Context, userID string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}
	return teacher, nil
}

func (s *ClassService) ownedClass(ctx context.Context, teacherUserID, classID string) (*models.Class, error) {
	teacher, err := s.resolveTeacher(ctx, teacherUserID)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.TeacherID != teacher.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

func (s *ClassService) writeAudit(ctx context.Context, actorID, action, resource, resourceID string, detail map[string]interface{}, ip, userAgent string) {
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
