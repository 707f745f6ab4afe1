package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/greenfield-academy/portal/internal/models"
)

// AssignmentRepository provides database access for assignments and
// submissions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, class_id, title, description, due_date, created_at) VALUES (:id, :class_id, :title, :description, :due_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, class_id, title, description, due_date, created_at FROM assignments WHERE id = $1 LIMIT 1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &assignment, nil
}

// ListByClass returns the assignments of a class, newest due date last.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.Assignment, error) {
	const query = `SELECT id, class_id, title, description, due_date, created_at FROM assignments WHERE class_id = $1 ORDER BY due_date`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list assignments by class: %w", err)
	}
	return assignments, nil
}

// UpcomingForStudents returns assignments falling due at or after from
// across every class the given students are enrolled in, soonest first,
// tagged with the student and their submission state.
func (r *AssignmentRepository) UpcomingForStudents(ctx context.Context, studentIDs []string, from time.Time, limit int) ([]models.StudentUpcoming, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	query := fmt.Sprintf(`SELECT cs.student_id, a.id, a.class_id, a.title, a.description, a.due_date, a.created_at,
c.name AS class_name, sub.submitted_at
FROM assignments a
JOIN classes c ON c.id = a.class_id
JOIN class_students cs ON cs.class_id = a.class_id
LEFT JOIN assignment_submissions sub ON sub.assignment_id = a.id AND sub.student_id = cs.student_id
WHERE cs.student_id = ANY($1) AND a.due_date >= $2
ORDER BY a.due_date, a.title
LIMIT %d`, limit)

	var upcoming []models.StudentUpcoming
	if err := r.db.SelectContext(ctx, &upcoming, query, pq.Array(studentIDs), from); err != nil {
		return nil, fmt.Errorf("list upcoming assignments: %w", err)
	}
	return upcoming, nil
}

// Submit records that a student handed in an assignment.
func (r *AssignmentRepository) Submit(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignment_submissions (id, assignment_id, student_id, submitted_at) VALUES (:id, :assignment_id, :student_id, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// ReminderTargets returns one row per (assignment, enrolled student)
// pair where the assignment falls due inside (from, to] and the student
// has not submitted.
func (r *AssignmentRepository) ReminderTargets(ctx context.Context, from, to time.Time) ([]models.ReminderTarget, error) {
	const query = `SELECT a.id AS assignment_id, a.title, a.due_date, c.name AS class_name,
s.id AS student_id, u.first_name || ' ' || u.last_name AS student_name, u.email AS student_email
FROM assignments a
JOIN classes c ON c.id = a.class_id
JOIN class_students cs ON cs.class_id = a.class_id
JOIN students s ON s.id = cs.student_id
JOIN users u ON u.id = s.user_id
LEFT JOIN assignment_submissions sub ON sub.assignment_id = a.id AND sub.student_id = s.id
WHERE a.due_date > $1 AND a.due_date <= $2 AND sub.id IS NULL
ORDER BY a.due_date, student_name`
	var targets []models.ReminderTarget
	if err := r.db.SelectContext(ctx, &targets, query, from, to); err != nil {
		return nil, fmt.Errorf("list reminder targets: %w", err)
	}
	return targets, nil
}
