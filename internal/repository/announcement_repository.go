package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenfield-academy/portal/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO announcements (id, title, body, created_by, created_at) VALUES (:id, :title, :body, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// ListRecent returns the newest announcements.
func (r *AnnouncementRepository) ListRecent(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT id, title, body, created_by, created_at FROM announcements ORDER BY created_at DESC LIMIT %d`, limit)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, fmt.Errorf("list recent announcements: %w", err)
	}
	return announcements, nil
}

// ListAll returns every announcement, newest first.
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]models.Announcement, error) {
	const query = `SELECT id, title, body, created_by, created_at FROM announcements ORDER BY created_at DESC`
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}
