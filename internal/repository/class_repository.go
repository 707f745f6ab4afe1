package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

const classInfoSelect = `SELECT c.id, c.name, c.teacher_id, c.created_at,
tu.first_name || ' ' || tu.last_name AS teacher_name,
(SELECT COUNT(*) FROM class_students cs WHERE cs.class_id = c.id) AS student_count
FROM classes c
JOIN teachers t ON t.id = c.teacher_id
JOIN users tu ON tu.id = t.user_id`

// ClassRepository provides database access for classes and rosters.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classes (id, name, teacher_id, created_at) VALUES (:id, :name, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, teacher_id, created_at FROM classes WHERE id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// ListAll returns every class with teacher name and student count.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.ClassInfo, error) {
	query := classInfoSelect + "\nORDER BY c.name"
	var classes []models.ClassInfo
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListByTeacher returns the classes owned by a teacher.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassInfo, error) {
	query := classInfoSelect + "\nWHERE c.teacher_id = $1\nORDER BY c.name"
	var classes []models.ClassInfo
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classes, nil
}

// ListByStudent returns the classes a student is enrolled in.
func (r *ClassRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ClassInfo, error) {
	query := classInfoSelect + `
JOIN class_students cs ON cs.class_id = c.id
WHERE cs.student_id = $1
ORDER BY c.name`
	var classes []models.ClassInfo
	if err := r.db.SelectContext(ctx, &classes, query, studentID); err != nil {
		return nil, fmt.Errorf("list classes by student: %w", err)
	}
	return classes, nil
}

// Roster returns the enrolled students of a class.
func (r *ClassRepository) Roster(ctx context.Context, classID string) ([]models.RosterEntry, error) {
	const query = `SELECT s.id AS student_id, s.student_number, u.first_name || ' ' || u.last_name AS student_name, u.email, s.grade_level
FROM class_students cs
JOIN students s ON s.id = cs.student_id
JOIN users u ON u.id = s.user_id
WHERE cs.class_id = $1
ORDER BY student_name`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, classID); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

// Enroll adds a student to a class.
func (r *ClassRepository) Enroll(ctx context.Context, classID, studentID string) error {
	const query = `INSERT INTO class_students (class_id, student_id, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, classID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("enroll student: %w", err)
	}
	return nil
}

// IsEnrolled reports whether the student belongs to the class.
func (r *ClassRepository) IsEnrolled(ctx context.Context, classID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM class_students WHERE class_id = $1 AND student_id = $2)`
	var enrolled bool
	if err := r.db.GetContext(ctx, &enrolled, query, classID, studentID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}

// Count returns the number of classes.
func (r *ClassRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM classes`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}
