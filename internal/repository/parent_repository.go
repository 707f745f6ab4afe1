package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// ParentRepository provides database access for parent profiles and
// guardianship links.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository creates a new instance of ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// FindByUserID returns the parent profile backing an account.
func (r *ParentRepository) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	const query = `SELECT id, user_id, phone, occupation, created_at FROM parents WHERE user_id = $1 LIMIT 1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parent by user id: %w", err)
	}
	return &parent, nil
}

// Children returns the students linked to a parent.
func (r *ParentRepository) Children(ctx context.Context, parentID string) ([]models.StudentInfo, error) {
	const query = `SELECT s.id, s.user_id, s.student_number, s.date_of_birth, s.grade_level, s.enrolled_at, s.created_at,
u.first_name, u.last_name, u.email
FROM student_parents sp
JOIN students s ON s.id = sp.student_id
JOIN users u ON u.id = s.user_id
WHERE sp.parent_id = $1
ORDER BY u.last_name, u.first_name`
	var children []models.StudentInfo
	if err := r.db.SelectContext(ctx, &children, query, parentID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// Link records a guardianship between a student and a parent.
func (r *ParentRepository) Link(ctx context.Context, studentID, parentID string) error {
	const query = `INSERT INTO student_parents (student_id, parent_id, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, studentID, parentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("link guardian: %w", err)
	}
	return nil
}

// IsGuardian reports whether the parent is linked to the student.
func (r *ParentRepository) IsGuardian(ctx context.Context, parentID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM student_parents WHERE parent_id = $1 AND student_id = $2)`
	var linked bool
	if err := r.db.GetContext(ctx, &linked, query, parentID, studentID); err != nil {
		return false, fmt.Errorf("check guardianship: %w", err)
	}
	return linked, nil
}
