package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfield-academy/portal/internal/models"
)

func TestCreateClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{Name: "Algebra I", TeacherID: "t1"}
	err := repo.Create(context.Background(), class)
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "teacher_id", "created_at", "teacher_name", "student_count"}).
		AddRow("c1", "Algebra I", "t1", now, "Jane Doe", 24).
		AddRow("c2", "Geometry", "t1", now, "Jane Doe", 19)
	mock.ExpectQuery("WHERE c.teacher_id = ").
		WithArgs("t1").
		WillReturnRows(rows)

	classes, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Algebra I", classes[0].Name)
	assert.Equal(t, 24, classes[0].StudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoster(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "student_number", "student_name", "email", "grade_level"}).
		AddRow("s1", "S-1001", "Ana Alves", "ana@example.com", "9").
		AddRow("s2", "S-1002", "Ben Burke", "ben@example.com", "9")
	mock.ExpectQuery("FROM class_students cs").
		WithArgs("c1").
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "S-1001", roster[0].StudentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnroll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO class_students").
		WithArgs("c1", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsEnrolled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("c1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	enrolled, err := repo.IsEnrolled(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.True(t, enrolled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountClasses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
