package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// GradeRepository provides database access for grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new instance of GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Create inserts a new grade.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grades (id, student_id, class_id, score, created_at) VALUES (:id, :student_id, :class_id, :score, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// ListByClass returns the grades recorded in a class, newest first.
func (r *GradeRepository) ListByClass(ctx context.Context, classID string) ([]models.GradeInfo, error) {
	const query = `SELECT g.id, g.student_id, g.class_id, g.score, g.created_at,
c.name AS class_name, u.first_name || ' ' || u.last_name AS student_name
FROM grades g
JOIN classes c ON c.id = g.class_id
JOIN students s ON s.id = g.student_id
JOIN users u ON u.id = s.user_id
WHERE g.class_id = $1
ORDER BY g.created_at DESC`
	var grades []models.GradeInfo
	if err := r.db.SelectContext(ctx, &grades, query, classID); err != nil {
		return nil, fmt.Errorf("list grades by class: %w", err)
	}
	return grades, nil
}

// ListByStudent returns a student's grades across all classes.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GradeInfo, error) {
	const query = `SELECT g.id, g.student_id, g.class_id, g.score, g.created_at,
c.name AS class_name, u.first_name || ' ' || u.last_name AS student_name
FROM grades g
JOIN classes c ON c.id = g.class_id
JOIN students s ON s.id = g.student_id
JOIN users u ON u.id = s.user_id
WHERE g.student_id = $1
ORDER BY c.name, g.created_at`
	var grades []models.GradeInfo
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return grades, nil
}

// AveragesForStudent returns the student's mean score per class.
func (r *GradeRepository) AveragesForStudent(ctx context.Context, studentID string) ([]models.ClassAverage, error) {
	const query = `SELECT g.class_id, c.name AS class_name, AVG(g.score) AS average, COUNT(*) AS count
FROM grades g
JOIN classes c ON c.id = g.class_id
WHERE g.student_id = $1
GROUP BY g.class_id, c.name
ORDER BY c.name`
	var averages []models.ClassAverage
	if err := r.db.SelectContext(ctx, &averages, query, studentID); err != nil {
		return nil, fmt.Errorf("student grade averages: %w", err)
	}
	return averages, nil
}
