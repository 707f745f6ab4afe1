package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfield-academy/portal/internal/models"
)

func TestCreateAnnouncement(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("INSERT INTO announcements").WillReturnResult(sqlmock.NewResult(1, 1))

	announcement := &models.Announcement{Title: "Sports day", Body: "Friday on the main field."}
	err := repo.Create(context.Background(), announcement)
	require.NoError(t, err)
	assert.NotEmpty(t, announcement.ID)
	assert.False(t, announcement.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentAnnouncementsClampsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "body", "created_by", "created_at"}).
		AddRow("a1", "Sports day", "Friday on the main field.", nil, time.Now())
	mock.ExpectQuery("FROM announcements ORDER BY created_at DESC LIMIT 5").
		WillReturnRows(rows)

	announcements, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	assert.Equal(t, "Sports day", announcements[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.Event{Title: "Parent evening", Location: "Hall B", StartsAt: time.Now().Add(72 * time.Hour)}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUpcomingEventsFiltersByStart(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "location", "starts_at", "created_by", "created_at"}).
		AddRow("e1", "Parent evening", "Hall B", from.Add(48*time.Hour), nil, time.Now())
	mock.ExpectQuery("WHERE starts_at >= ").
		WithArgs(from).
		WillReturnRows(rows)

	events, err := repo.ListUpcoming(context.Background(), from, 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Parent evening", events[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
