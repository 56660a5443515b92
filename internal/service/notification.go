package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
)

type message struct {
	Subject string
	Body    string
	HTML    string
}

func returnReceipt(business string, s *domain.RentalSession) message {
	lines := []string{
		fmt.Sprintf("Hello %s,", s.CustomerName),
		"",
		fmt.Sprintf("Thank you for renting with %s. Your rental %s for vehicle %s is closed.", business, s.ContractID(), s.VehiclePlate),
		"",
		fmt.Sprintf("Rental (%s to %s): $%.2f", s.PickupDate, s.ReturnDate, s.TotalAmount),
	}
	fees := []struct {
		label  string
		amount float64
	}{
		{"Late return", s.LateFeeAmount},
		{"Excess mileage", s.MileageFeeAmount},
		{"Refueling", s.FuelFeeAmount},
		{"Cleaning", s.CleaningFeeAmount},
		{"Damage", s.DamageFeeAmount},
	}
	for _, f := range fees {
		if f.amount > 0 {
			lines = append(lines, fmt.Sprintf("%s: $%.2f", f.label, f.amount))
		}
	}
	lines = append(lines,
		fmt.Sprintf("Additional charges: $%.2f", s.SubtotalFees),
		fmt.Sprintf("Final total: $%.2f", s.FinalTotal),
		fmt.Sprintf("Deposit refund: $%.2f", s.DepositRefundAmount),
		"",
		"Best regards,",
		business,
	)
	return newMessage(fmt.Sprintf("Your %s receipt - %s", business, s.ContractID()), lines)
}

func overdueReminder(business string, s *domain.RentalSession) message {
	lines := []string{
		fmt.Sprintf("Hello %s,", s.CustomerName),
		"",
		fmt.Sprintf("Vehicle %s from rental %s was due back on %s.", s.VehiclePlate, s.ContractID(), s.ReturnDate),
		"Late fees apply until the vehicle is returned. Please return it as soon as possible or contact us to extend.",
		"",
		"Best regards,",
		business,
	}
	return newMessage(fmt.Sprintf("%s: vehicle %s is overdue", business, s.VehiclePlate), lines)
}

func newMessage(subject string, lines []string) message {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, l := range lines {
		if l == "" {
			b.WriteString("<br>")
			continue
		}
		b.WriteString("<p>" + html.EscapeString(l) + "</p>")
	}
	b.WriteString("</body></html>")
	return message{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
		HTML:    b.String(),
	}
}

// logNotifier records notifications in the log instead of emailing them.
// Used when no SendGrid key is configured.
type logNotifier struct {
	business string
}

func NewLogNotifier(business string) Notifier {
	return &logNotifier{business: business}
}

func (n *logNotifier) SendReturnReceipt(ctx context.Context, s *domain.RentalSession) error {
	if s.CustomerEmail == "" {
		return nil
	}
	msg := returnReceipt(n.business, s)
	logger.WithSession(s.ID).Info("Return receipt (email disabled)", "to", s.CustomerEmail, "subject", msg.Subject)
	return nil
}

func (n *logNotifier) SendOverdueReminder(ctx context.Context, s *domain.RentalSession) error {
	if s.CustomerEmail == "" {
		return nil
	}
	msg := overdueReminder(n.business, s)
	logger.WithSession(s.ID).Info("Overdue reminder (email disabled)", "to", s.CustomerEmail, "subject", msg.Subject)
	return nil
}
