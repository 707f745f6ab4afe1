package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type mockParentRepo struct {
	parent   *models.Parent
	children []models.StudentInfo
	guardian bool
}

func (m *mockParentRepo) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	if m.parent == nil {
		return nil, sql.ErrNoRows
	}
	return m.parent, nil
}

func (m *mockParentRepo) Children(ctx context.Context, parentID string) ([]models.StudentInfo, error) {
	return m.children, nil
}

func (m *mockParentRepo) IsGuardian(ctx context.Context, parentID, studentID string) (bool, error) {
	return m.guardian, nil
}

func parentFixture(parents *mockParentRepo) *ParentService {
	return NewParentService(
		parents,
		&mockClassStudents{infoByID: &models.StudentInfo{
			Student:   models.Student{ID: "s1", StudentNumber: "S-1001"},
			FirstName: "Ann",
			LastName:  "Lee",
		}},
		&mockDashClasses{byStudent: []models.ClassInfo{{Class: models.Class{ID: "c1", Name: "Algebra I"}}}},
		&mockGradeRepo{
			byStudent: []models.GradeInfo{{Grade: models.Grade{ID: "g1", Score: 91}, ClassName: "Algebra I"}},
			averages:  []models.ClassAverage{{ClassID: "c1", ClassName: "Algebra I", Average: 91, Count: 1}},
		},
		&mockAttendanceRepo{summary: &models.AttendanceSummary{Present: 12, Absent: 2, Total: 14}},
		zap.NewNop(),
	)
}

func TestParentChildren(t *testing.T) {
	parents := &mockParentRepo{
		parent: &models.Parent{ID: "p1", UserID: "u3"},
		children: []models.StudentInfo{
			{Student: models.Student{ID: "s1"}, FirstName: "Ann", LastName: "Lee"},
		},
	}
	svc := parentFixture(parents)

	children, err := svc.Children(context.Background(), "u3")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Ann Lee", children[0].FullName())
}

func TestParentChildDetail(t *testing.T) {
	parents := &mockParentRepo{parent: &models.Parent{ID: "p1", UserID: "u3"}, guardian: true}
	svc := parentFixture(parents)

	detail, err := svc.ChildDetail(context.Background(), "u3", "s1")
	require.NoError(t, err)
	assert.Equal(t, "S-1001", detail.Student.StudentNumber)
	require.Len(t, detail.Classes, 1)
	require.Len(t, detail.Grades, 1)
	require.NotNil(t, detail.Attendance)
	assert.Equal(t, 12, detail.Attendance.Present)
}

func TestParentChildDetailNotLinked(t *testing.T) {
	parents := &mockParentRepo{parent: &models.Parent{ID: "p1", UserID: "u3"}, guardian: false}
	svc := parentFixture(parents)

	_, err := svc.ChildDetail(context.Background(), "u3", "s-other")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestParentMissingProfile(t *testing.T) {
	svc := parentFixture(&mockParentRepo{})

	_, err := svc.Children(context.Background(), "u-none")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
