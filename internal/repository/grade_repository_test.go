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

func TestCreateGrade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{StudentID: "s1", ClassID: "c1", Score: 87.5}
	err := repo.Create(context.Background(), grade)
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "class_id", "score", "created_at", "class_name", "student_name"}).
		AddRow("g1", "s1", "c1", 87.5, now, "Algebra I", "Ana Alves").
		AddRow("g2", "s1", "c2", 91.0, now, "English", "Ana Alves")
	mock.ExpectQuery("WHERE g.student_id = ").
		WithArgs("s1").
		WillReturnRows(rows)

	grades, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, "Algebra I", grades[0].ClassName)
	assert.InDelta(t, 87.5, grades[0].Score, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAveragesForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"class_id", "class_name", "average", "count"}).
		AddRow("c1", "Algebra I", 84.25, 4).
		AddRow("c2", "English", 90.0, 2)
	mock.ExpectQuery("GROUP BY g.class_id").
		WithArgs("s1").
		WillReturnRows(rows)

	averages, err := repo.AveragesForStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, averages, 2)
	assert.InDelta(t, 84.25, averages[0].Average, 0.001)
	assert.Equal(t, 4, averages[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
