package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfield-academy/portal/internal/models"
)

func TestRosterForClassDateDefaultsAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"student_id", "student_name", "status"}).
		AddRow("s1", "Ana Alves", "present").
		AddRow("s2", "Ben Burke", "absent")
	mock.ExpectQuery("FROM class_students cs").
		WithArgs("c1", date).
		WillReturnRows(rows)

	entries, err := repo.RosterForClassDate(context.Background(), "c1", date)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AttendanceStatusPresent, entries[0].Status)
	assert.Equal(t, models.AttendanceStatusAbsent, entries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchUpdatesExistingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance SET status").
		WithArgs("s1", "c1", date, "late", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveBatch(context.Background(), "c1", date, []models.AttendanceMark{
		{StudentID: "s1", Status: models.AttendanceStatusLate},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchInsertsWhenNoRowExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance SET status").
		WithArgs("s1", "c1", date, "present", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(sqlmock.AnyArg(), "s1", "c1", date, "present", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SaveBatch(context.Background(), "c1", date, []models.AttendanceMark{
		{StudentID: "s1", Status: models.AttendanceStatusPresent},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance SET status").
		WithArgs("s1", "c1", date, "present", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE attendance SET status").
		WithArgs("s2", "c1", date, "late", sqlmock.AnyArg()).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.SaveBatch(context.Background(), "c1", date, []models.AttendanceMark{
		{StudentID: "s1", Status: models.AttendanceStatusPresent},
		{StudentID: "s2", Status: models.AttendanceStatusLate},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingForDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"student_id", "class_id"}).
		AddRow("s1", "c1").
		AddRow("s2", "c1")
	mock.ExpectQuery("SELECT cs.student_id, cs.class_id").
		WithArgs(date).
		WillReturnRows(rows)

	missing, err := repo.MissingForDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "s1", missing[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	records := []models.Attendance{
		{StudentID: "s1", ClassID: "c1", Date: date, Status: models.AttendanceStatusAbsent},
		{StudentID: "s2", ClassID: "c1", Date: date, Status: models.AttendanceStatusAbsent},
	}
	err := repo.InsertBatch(context.Background(), records)
	require.NoError(t, err)
	assert.NotEmpty(t, records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"status", "cnt"}).
		AddRow("present", 18).
		AddRow("absent", 1).
		AddRow("late", 2)
	mock.ExpectQuery("SELECT status, COUNT").
		WithArgs("s1").
		WillReturnRows(rows)

	summary, err := repo.SummaryForStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 18, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 2, summary.Late)
	assert.Equal(t, 21, summary.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
