package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/internal/notify"
	"github.com/greenfield-academy/portal/pkg/jobs"
)

const reminderJobType = "assignment_reminder"

type maintAttendanceRepository interface {
	MissingForDate(ctx context.Context, date time.Time) ([]models.AttendanceKey, error)
	InsertBatch(ctx context.Context, records []models.Attendance) error
}

type maintAssignmentRepository interface {
	ReminderTargets(ctx context.Context, from, to time.Time) ([]models.ReminderTarget, error)
}

type reminderQueue interface {
	Enqueue(job jobs.Job) error
}

// MaintenanceService implements the daily housekeeping sweeps run by
// the scheduler.
type MaintenanceService struct {
	attendance  maintAttendanceRepository
	assignments maintAssignmentRepository
	queue       reminderQueue
	notifier    notify.Notifier
	metrics     *MetricsService
	window      time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewMaintenanceService constructs a MaintenanceService. The window is
// how far ahead the reminder sweep looks for due assignments.
func NewMaintenanceService(
	attendance maintAttendanceRepository,
	assignments maintAssignmentRepository,
	queue reminderQueue,
	notifier notify.Notifier,
	metrics *MetricsService,
	window time.Duration,
	logger *zap.Logger,
) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &MaintenanceService{
		attendance:  attendance,
		assignments: assignments,
		queue:       queue,
		notifier:    notifier,
		metrics:     metrics,
		window:      window,
		logger:      logger,
		now:         time.Now,
	}
}

// AttendanceSweep inserts an absent record for every (class, enrolled
// student) pair lacking any attendance row for today. Existing rows are
// never touched, so a second run the same day inserts nothing.
func (s *MaintenanceService) AttendanceSweep(ctx context.Context) (int, error) {
	today := truncateToDay(s.now().UTC())

	missing, err := s.attendance.MissingForDate(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("attendance sweep: %w", err)
	}
	if len(missing) == 0 {
		s.logger.Info("attendance sweep found nothing to fill", zap.Time("date", today))
		return 0, nil
	}

	records := make([]models.Attendance, 0, len(missing))
	for _, key := range missing {
		records = append(records, models.Attendance{
			StudentID: key.StudentID,
			ClassID:   key.ClassID,
			Date:      today,
			Status:    models.AttendanceStatusAbsent,
		})
	}
	if err := s.attendance.InsertBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("attendance sweep: %w", err)
	}

	s.logger.Info("attendance sweep filled absences",
		zap.Time("date", today),
		zap.Int("inserted", len(records)),
	)
	return len(records), nil
}

// ReminderSweep enqueues one reminder job per (assignment, enrolled
// student) pair where the assignment falls due inside the window and
// the student has not submitted.
func (s *MaintenanceService) ReminderSweep(ctx context.Context) (int, error) {
	from := s.now().UTC()
	to := from.Add(s.window)

	targets, err := s.assignments.ReminderTargets(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("reminder sweep: %w", err)
	}

	queued := 0
	for _, target := range targets {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    reminderJobType,
			Payload: target,
		}
		if err := s.queue.Enqueue(job); err != nil {
			return queued, fmt.Errorf("reminder sweep: %w", err)
		}
		queued++
	}

	if s.metrics != nil {
		s.metrics.RecordRemindersQueued(queued)
	}
	s.logger.Info("reminder sweep queued notifications",
		zap.Int("queued", queued),
		zap.Time("windowEnd", to),
	)
	return queued, nil
}

// DeliverReminder is the queue handler for reminder jobs.
func (s *MaintenanceService) DeliverReminder(ctx context.Context, job jobs.Job) error {
	target, ok := job.Payload.(models.ReminderTarget)
	if !ok {
		return fmt.Errorf("deliver reminder: unexpected payload %T", job.Payload)
	}
	return s.notifier.SendReminder(ctx, notify.Reminder{
		StudentName:  target.StudentName,
		StudentEmail: target.StudentEmail,
		Assignment:   target.Title,
		ClassName:    target.ClassName,
		DueDate:      target.DueDate,
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
