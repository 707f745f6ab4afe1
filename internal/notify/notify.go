// Package notify delivers assignment reminders to students. The
// console driver only logs them; the sendgrid driver sends real mail.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/pkg/config"
)

// Reminder is one due-date notice addressed to a student.
type Reminder struct {
	StudentName  string
	StudentEmail string
	Assignment   string
	ClassName    string
	DueDate      time.Time
}

// Subject builds the reminder subject line.
func (r Reminder) Subject() string {
	return fmt.Sprintf("Reminder: %q is due soon", r.Assignment)
}

// Body builds the plain-text reminder body.
func (r Reminder) Body() string {
	return fmt.Sprintf(
		"Hi %s,\n\nThe assignment %q for %s is due on %s. Please submit it before the deadline.\n",
		r.StudentName, r.Assignment, r.ClassName, r.DueDate.Format("Mon, 02 Jan 2006 15:04"),
	)
}

// Notifier delivers reminders.
type Notifier interface {
	SendReminder(ctx context.Context, reminder Reminder) error
}

// New selects a notifier by the configured driver.
func New(cfg config.NotifyConfig, logger *zap.Logger) (Notifier, error) {
	switch cfg.Driver {
	case "", "console":
		return NewConsoleNotifier(logger), nil
	case "sendgrid":
		if cfg.SendgridKey == "" {
			return nil, fmt.Errorf("notify driver sendgrid requires an api key")
		}
		return NewSendGridNotifier(cfg), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}
