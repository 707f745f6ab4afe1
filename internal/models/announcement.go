package models

import "time"

// Announcement is a school-wide notice shown on dashboards.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Event is a dated calendar entry shown on dashboards.
type Event struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Location  string    `db:"location" json:"location"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
