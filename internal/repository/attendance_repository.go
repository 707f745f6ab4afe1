package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
//
// The attendance table carries no unique constraint on
// (student_id, class_id, date), so every write path here works by
// update-first-then-insert instead of ON CONFLICT and tolerates
// historical duplicate rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// RosterForClassDate returns one entry per enrolled student of the
// class with that day's status, defaulting to absent when no record
// exists. When duplicates exist the most recently updated row wins.
func (r *AttendanceRepository) RosterForClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceEntry, error) {
	const query = `SELECT s.id AS student_id,
u.first_name || ' ' || u.last_name AS student_name,
COALESCE((SELECT a.status FROM attendance a
    WHERE a.student_id = s.id AND a.class_id = cs.class_id AND a.date = $2
    ORDER BY a.updated_at DESC LIMIT 1), 'absent') AS status
FROM class_students cs
JOIN students s ON s.id = cs.student_id
JOIN users u ON u.id = s.user_id
WHERE cs.class_id = $1
ORDER BY student_name`
	var entries []models.AttendanceEntry
	if err := r.db.SelectContext(ctx, &entries, query, classID, date); err != nil {
		return nil, fmt.Errorf("load attendance roster: %w", err)
	}
	return entries, nil
}

// SaveBatch upserts the given marks for one class and date inside a
// single transaction: update the rows for the (student, class, date)
// key when any exist, insert a fresh row otherwise. Any failure rolls
// the whole batch back.
func (r *AttendanceRepository) SaveBatch(ctx context.Context, classID string, date time.Time, marks []models.AttendanceMark) error {
	if len(marks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const update = `UPDATE attendance SET status = $4, updated_at = $5 WHERE student_id = $1 AND class_id = $2 AND date = $3`
	const insert = `INSERT INTO attendance (id, student_id, class_id, date, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	for _, mark := range marks {
		res, err := tx.ExecContext(ctx, update, mark.StudentID, classID, date, mark.Status, now)
		if err != nil {
			return fmt.Errorf("update attendance: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update attendance result: %w", err)
		}
		if affected > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), mark.StudentID, classID, date, mark.Status, now, now); err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	committed = true
	return nil
}

// MissingForDate returns every (student, class) enrollment pair lacking
// any attendance row on the given date.
func (r *AttendanceRepository) MissingForDate(ctx context.Context, date time.Time) ([]models.AttendanceKey, error) {
	const query = `SELECT cs.student_id, cs.class_id
FROM class_students cs
WHERE NOT EXISTS (
    SELECT 1 FROM attendance a
    WHERE a.student_id = cs.student_id AND a.class_id = cs.class_id AND a.date = $1
)`
	var missing []models.AttendanceKey
	if err := r.db.SelectContext(ctx, &missing, query, date); err != nil {
		return nil, fmt.Errorf("list missing attendance: %w", err)
	}
	return missing, nil
}

// InsertBatch inserts the given records in one transaction without
// touching existing rows.
func (r *AttendanceRepository) InsertBatch(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance insert: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const insert = `INSERT INTO attendance (id, student_id, class_id, date, status, created_at, updated_at) VALUES (:id, :student_id, :class_id, :date, :status, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, rec); err != nil {
			return fmt.Errorf("insert attendance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance insert: %w", err)
	}
	committed = true
	return nil
}

// SummaryForStudent aggregates a student's records across all classes.
func (r *AttendanceRepository) SummaryForStudent(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	const query = `SELECT status, COUNT(*) AS cnt FROM attendance WHERE student_id = $1 GROUP BY status`
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance summary: %w", err)
	}

	summary := &models.AttendanceSummary{}
	for _, row := range rows {
		switch models.AttendanceStatus(row.Status) {
		case models.AttendanceStatusPresent:
			summary.Present += row.Count
		case models.AttendanceStatusAbsent:
			summary.Absent += row.Count
		case models.AttendanceStatusLate:
			summary.Late += row.Count
		case models.AttendanceStatusExcused:
			summary.Excused += row.Count
		}
		summary.Total += row.Count
	}
	return summary, nil
}
