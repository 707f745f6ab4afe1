package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// TeacherRepository provides database access for teacher profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new instance of TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByUserID returns the teacher profile backing an account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, employee_id, department, created_at FROM teachers WHERE user_id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by user id: %w", err)
	}
	return &teacher, nil
}

// FindByID returns a teacher profile by its primary key.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, employee_id, department, created_at FROM teachers WHERE id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by id: %w", err)
	}
	return &teacher, nil
}

// ListAll returns every teacher with account display fields.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.TeacherInfo, error) {
	const query = `SELECT t.id, t.user_id, t.employee_id, t.department, t.created_at,
u.first_name, u.last_name, u.email
FROM teachers t
JOIN users u ON u.id = t.user_id
ORDER BY u.last_name, u.first_name`
	var teachers []models.TeacherInfo
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}
