package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/dto"
	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type parentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
	Children(ctx context.Context, parentID string) ([]models.StudentInfo, error)
	IsGuardian(ctx context.Context, parentID, studentID string) (bool, error)
}

type parentStudentRepository interface {
	FindInfoByID(ctx context.Context, id string) (*models.StudentInfo, error)
}

type parentClassRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassInfo, error)
}

type parentGradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeInfo, error)
	AveragesForStudent(ctx context.Context, studentID string) ([]models.ClassAverage, error)
}

type parentAttendanceRepository interface {
	SummaryForStudent(ctx context.Context, studentID string) (*models.AttendanceSummary, error)
}

// ParentService serves guardians their linked children's records.
type ParentService struct {
	parents    parentRepository
	students   parentStudentRepository
	classes    parentClassRepository
	grades     parentGradeRepository
	attendance parentAttendanceRepository
	logger     *zap.Logger
}

// NewParentService constructs a ParentService.
func NewParentService(
	parents parentRepository,
	students parentStudentRepository,
	classes parentClassRepository,
	grades parentGradeRepository,
	attendance parentAttendanceRepository,
	logger *zap.Logger,
) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{
		parents:    parents,
		students:   students,
		classes:    classes,
		grades:     grades,
		attendance: attendance,
		logger:     logger,
	}
}

// Children lists the students linked to the signed-in parent.
func (s *ParentService) Children(ctx context.Context, parentUserID string) ([]models.StudentInfo, error) {
	parent, err := s.resolveParent(ctx, parentUserID)
	if err != nil {
		return nil, err
	}
	children, err := s.parents.Children(ctx, parent.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load children")
	}
	return children, nil
}

// ChildDetail loads one linked child's classes, grades, and attendance
// summary. Children not linked to the parent are reported as not found.
func (s *ParentService) ChildDetail(ctx context.Context, parentUserID, studentID string) (*dto.ChildDetail, error) {
	parent, err := s.resolveParent(ctx, parentUserID)
	if err != nil {
		return nil, err
	}

	linked, err := s.parents.IsGuardian(ctx, parent.ID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check guardianship")
	}
	if !linked {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
	}

	student, err := s.students.FindInfoByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	averages, err := s.grades.AveragesForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load averages")
	}
	summary, err := s.attendance.SummaryForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}

	return &dto.ChildDetail{
		Student:    *student,
		Classes:    classes,
		Grades:     grades,
		Averages:   averages,
		Attendance: summary,
	}, nil
}

func (s *ParentService) resolveParent(ctx context.Context, userID string) (*models.Parent, error) {
	parent, err := s.parents.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent profile")
	}
	return parent, nil
}
