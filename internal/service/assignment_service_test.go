package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

type mockAsgRepo struct {
	created   *models.Assignment
	byID      *models.Assignment
	submitErr error
	submitted *models.Submission
}

func (m *mockAsgRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = "as-new"
	m.created = assignment
	return nil
}

func (m *mockAsgRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockAsgRepo) Submit(ctx context.Context, submission *models.Submission) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = submission
	return nil
}

type mockAsgClasses struct {
	class    *models.Class
	enrolled bool
}

func (m *mockAsgClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if m.class == nil {
		return nil, sql.ErrNoRows
	}
	return m.class, nil
}

func (m *mockAsgClasses) IsEnrolled(ctx context.Context, classID, studentID string) (bool, error) {
	return m.enrolled, nil
}

func assignmentFixture() (*AssignmentService, *mockAsgRepo, *mockAuditSink) {
	repo := &mockAsgRepo{}
	audit := &mockAuditSink{}
	svc := NewAssignmentService(
		repo,
		&mockAsgClasses{class: &models.Class{ID: "c1", TeacherID: "t1"}, enrolled: true},
		&mockAttTeachers{teacher: &models.Teacher{ID: "t1", UserID: "u1"}},
		&mockDashStudents{student: &models.Student{ID: "s1", UserID: "u2"}},
		audit,
		zap.NewNop(),
	)
	return svc, repo, audit
}

func TestAssignmentCreate(t *testing.T) {
	svc, repo, audit := assignmentFixture()

	assignment, err := svc.Create(context.Background(), CreateAssignmentRequest{
		ClassID:       "c1",
		TeacherUserID: "u1",
		Title:         " Essay ",
		Description:   "Five paragraphs",
		DueDate:       "2024-05-01T14:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Essay", assignment.Title)
	assert.Equal(t, time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC), assignment.DueDate)
	assert.Equal(t, repo.created, assignment)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionAssignment, audit.logs[0].Action)
}

func TestAssignmentCreateDateOnlyDueEndOfDay(t *testing.T) {
	svc, _, _ := assignmentFixture()

	assignment, err := svc.Create(context.Background(), CreateAssignmentRequest{
		ClassID:       "c1",
		TeacherUserID: "u1",
		Title:         "Essay",
		DueDate:       "2024-05-01",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC), assignment.DueDate)
}

func TestAssignmentCreateInvalidDueDate(t *testing.T) {
	svc, _, _ := assignmentFixture()

	_, err := svc.Create(context.Background(), CreateAssignmentRequest{
		ClassID:       "c1",
		TeacherUserID: "u1",
		Title:         "Essay",
		DueDate:       "soon",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentCreateHidesForeignClass(t *testing.T) {
	svc, _, _ := assignmentFixture()
	svc.classes = &mockAsgClasses{class: &models.Class{ID: "c1", TeacherID: "t-other"}}

	_, err := svc.Create(context.Background(), CreateAssignmentRequest{
		ClassID:       "c1",
		TeacherUserID: "u1",
		Title:         "Essay",
		DueDate:       "2024-05-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignmentSubmit(t *testing.T) {
	svc, repo, _ := assignmentFixture()
	repo.byID = &models.Assignment{ID: "as1", ClassID: "c1"}

	created, err := svc.Submit(context.Background(), SubmitAssignmentRequest{
		AssignmentID:  "as1",
		StudentUserID: "u2",
	})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, repo.submitted)
	assert.Equal(t, "s1", repo.submitted.StudentID)
	assert.Equal(t, "as1", repo.submitted.AssignmentID)
	assert.False(t, repo.submitted.SubmittedAt.IsZero())
}

func TestAssignmentSubmitTwiceKeepsOriginal(t *testing.T) {
	svc, repo, _ := assignmentFixture()
	repo.byID = &models.Assignment{ID: "as1", ClassID: "c1"}
	repo.submitErr = &pq.Error{Code: "23505", Constraint: "assignment_submissions_assignment_id_student_id_key"}

	created, err := svc.Submit(context.Background(), SubmitAssignmentRequest{
		AssignmentID:  "as1",
		StudentUserID: "u2",
	})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAssignmentSubmitNotEnrolled(t *testing.T) {
	svc, repo, _ := assignmentFixture()
	repo.byID = &models.Assignment{ID: "as1", ClassID: "c1"}
	svc.classes = &mockAsgClasses{class: &models.Class{ID: "c1"}, enrolled: false}

	_, err := svc.Submit(context.Background(), SubmitAssignmentRequest{
		AssignmentID:  "as1",
		StudentUserID: "u2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
