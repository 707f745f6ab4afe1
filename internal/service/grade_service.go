package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/dto"
	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/export"
)

type gradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeInfo, error)
	AveragesForStudent(ctx context.Context, studentID string) ([]models.ClassAverage, error)
}

type gradeClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	IsEnrolled(ctx context.Context, classID, studentID string) (bool, error)
}

type gradeTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type gradeStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindInfoByID(ctx context.Context, id string) (*models.StudentInfo, error)
}

type gradeAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type reportExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

// RecordGradeRequest carries the teacher grade-entry form.
type RecordGradeRequest struct {
	ClassID       string  `validate:"required"`
	TeacherUserID string  `validate:"required"`
	StudentID     string  `form:"student_id" validate:"required"`
	Score         float64 `form:"score" validate:"min=0,max=100"`
	IP            string
	UserAgent     string
}

// GradeService records scores and builds student grade views.
type GradeService struct {
	grades    gradeRepository
	classes   gradeClassRepository
	teachers  gradeTeacherRepository
	students  gradeStudentRepository
	audit     gradeAuditRepository
	exporter  reportExporter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewGradeService constructs a GradeService.
func NewGradeService(
	grades gradeRepository,
	classes gradeClassRepository,
	teachers gradeTeacherRepository,
	students gradeStudentRepository,
	audit gradeAuditRepository,
	exporter reportExporter,
	logger *zap.Logger,
) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		grades:    grades,
		classes:   classes,
		teachers:  teachers,
		students:  students,
		audit:     audit,
		exporter:  exporter,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Record enters a score for an enrolled student in a class the teacher
// owns.
func (s *GradeService) Record(ctx context.Context, req RecordGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student and a score between 0 and 100 are required")
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

	enrolled, err := s.classes.IsEnrolled(ctx, req.ClassID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in this class")
	}

	grade := &models.Grade{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Score:     req.Score,
	}
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"class_id":   grade.ClassID,
		"student_id": grade.StudentID,
		"score":      grade.Score,
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &teacher.UserID,
		Action:     models.AuditActionGradeEnter,
		Resource:   "grade",
		ResourceID: &grade.ID,
		Detail:     detail,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record grade audit log", zap.Error(err))
	}

	s.logger.Info("grade recorded",
		zap.String("classId", grade.ClassID),
		zap.String("studentId", grade.StudentID),
		zap.Float64("score", grade.Score),
	)
	return grade, nil
}

// ForStudent returns the signed-in student's grades and per-class
// averages.
func (s *GradeService) ForStudent(ctx context.Context, studentUserID string) (*dto.StudentGrades, error) {
	student, err := s.resolveStudent(ctx, studentUserID)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	averages, err := s.grades.AveragesForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load averages")
	}
	return &dto.StudentGrades{Grades: grades, Averages: averages}, nil
}

// ReportPDF renders the signed-in student's grades as a PDF download.
func (s *GradeService) ReportPDF(ctx context.Context, studentUserID string) (string, []byte, error) {
	student, err := s.resolveStudent(ctx, studentUserID)
	if err != nil {
		return "", nil, err
	}
	info, err := s.students.FindInfoByID(ctx, student.ID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	grades, err := s.grades.ListByStudent(ctx, student.ID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	averages, err := s.grades.AveragesForStudent(ctx, student.ID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load averages")
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Grade Report: %s", info.FullName()),
		Headers: []string{"Class", "Score", "Recorded"},
	}
	for _, grade := range grades {
		data.Rows = append(data.Rows, []string{
			grade.ClassName,
			strconv.FormatFloat(grade.Score, 'f', 1, 64),
			grade.CreatedAt.Format("2006-01-02"),
		})
	}
	for _, avg := range averages {
		data.Notes = append(data.Notes, fmt.Sprintf("%s average: %.1f (%d grades)", avg.ClassName, avg.Average, avg.Count))
	}

	payload, err := s.exporter.Render(data)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade report")
	}

	filename := fmt.Sprintf("grade_report_%s.pdf", s.now().UTC().Format("20060102"))
	return filename, payload, nil
}

func (s *GradeService) resolveStudent(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return student, nil
}
