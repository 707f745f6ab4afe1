package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// StudentRepository provides database access for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID returns the student profile backing an account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_number, date_of_birth, grade_level, enrolled_at, created_at FROM students WHERE user_id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user id: %w", err)
	}
	return &student, nil
}

// FindByNumber returns the student carrying the given student number.
func (r *StudentRepository) FindByNumber(ctx context.Context, number string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_number, date_of_birth, grade_level, enrolled_at, created_at FROM students WHERE student_number = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by number: %w", err)
	}
	return &student, nil
}

// FindInfoByID returns a student with account display fields.
func (r *StudentRepository) FindInfoByID(ctx context.Context, id string) (*models.StudentInfo, error) {
	const query = `SELECT s.id, s.user_id, s.student_number, s.date_of_birth, s.grade_level, s.enrolled_at, s.created_at,
u.first_name, u.last_name, u.email
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.id = $1 LIMIT 1`
	var student models.StudentInfo
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student info: %w", err)
	}
	return &student, nil
}
