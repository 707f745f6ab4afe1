package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/greenfield-academy/portal/pkg/config"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridNotifier delivers reminders through the SendGrid mail API.
type SendGridNotifier struct {
	key  string
	from *sgmail.Email
}

// NewSendGridNotifier constructs a SendGridNotifier.
func NewSendGridNotifier(cfg config.NotifyConfig) *SendGridNotifier {
	return &SendGridNotifier{
		key:  cfg.SendgridKey,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

// SendReminder mails the reminder to the student.
func (n *SendGridNotifier) SendReminder(ctx context.Context, reminder Reminder) error {
	to := sgmail.NewEmail(reminder.StudentName, reminder.StudentEmail)
	message := sgmail.NewSingleEmail(n.from, reminder.Subject(), to, reminder.Body(), "")

	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(message)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send reminder: sendgrid responded %d", res.StatusCode)
	}
	return nil
}
