package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// EventRepository provides persistence for calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (id, title, location, starts_at, created_by, created_at) VALUES (:id, :title, :location, :starts_at, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// ListUpcoming returns events starting at or after from, soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT id, title, location, starts_at, created_by, created_at FROM events WHERE starts_at >= $1 ORDER BY starts_at LIMIT %d`, limit)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, from); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// ListAll returns every event, soonest first.
func (r *EventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	const query = `SELECT id, title, location, starts_at, created_by, created_at FROM events ORDER BY starts_at DESC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
