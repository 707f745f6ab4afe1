package notify

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleNotifier writes reminders to the application log.
type ConsoleNotifier struct {
	logger *zap.Logger
}

// NewConsoleNotifier constructs a ConsoleNotifier.
func NewConsoleNotifier(logger *zap.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleNotifier{logger: logger}
}

// SendReminder logs the reminder instead of delivering it.
func (n *ConsoleNotifier) SendReminder(_ context.Context, reminder Reminder) error {
	n.logger.Info("assignment reminder",
		zap.String("student", reminder.StudentName),
		zap.String("email", reminder.StudentEmail),
		zap.String("assignment", reminder.Assignment),
		zap.String("class", reminder.ClassName),
		zap.Time("dueDate", reminder.DueDate),
	)
	return nil
}
