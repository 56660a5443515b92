package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
)

// mailClient is the part of the SendGrid client the notifier uses.
type mailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type emailNotifier struct {
	client   mailClient
	from     *mail.Email
	business string
}

// NewEmailNotifier sends customer emails through SendGrid.
func NewEmailNotifier(apiKey, fromAddress, fromName, business string) Notifier {
	return newEmailNotifier(sendgrid.NewSendClient(apiKey), fromAddress, fromName, business)
}

func newEmailNotifier(client mailClient, fromAddress, fromName, business string) *emailNotifier {
	return &emailNotifier{
		client:   client,
		from:     mail.NewEmail(fromName, fromAddress),
		business: business,
	}
}

func (n *emailNotifier) SendReturnReceipt(ctx context.Context, s *domain.RentalSession) error {
	if s.CustomerEmail == "" {
		logger.WithSession(s.ID).Debug("No customer email, receipt skipped")
		return nil
	}
	return n.send(s, returnReceipt(n.business, s))
}

func (n *emailNotifier) SendOverdueReminder(ctx context.Context, s *domain.RentalSession) error {
	if s.CustomerEmail == "" {
		logger.WithSession(s.ID).Debug("No customer email, reminder skipped")
		return nil
	}
	return n.send(s, overdueReminder(n.business, s))
}

func (n *emailNotifier) send(s *domain.RentalSession, msg message) error {
	to := mail.NewEmail(s.CustomerName, s.CustomerEmail)
	email := mail.NewSingleEmail(n.from, msg.Subject, to, msg.Body, msg.HTML)

	logger.ExternalServiceCall("sendgrid", "Send", "session_id", s.ID, "subject", msg.Subject)
	response, err := n.client.Send(email)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "Send", nil, "status", response.StatusCode)
	return nil
}
