package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/utils"
)

// sendgridEmailService sends settlement notifications through SendGrid.
type sendgridEmailService struct {
	client     *sendgrid.Client
	from       *mail.Email
	adminEmail string
}

func NewEmailService(apiKey, fromEmail, fromName, adminEmail string) EmailService {
	return &sendgridEmailService{
		client:     sendgrid.NewSendClient(apiKey),
		from:       mail.NewEmail(fromName, fromEmail),
		adminEmail: adminEmail,
	}
}

func (s *sendgridEmailService) NotifyAdminDepositRequested(ctx context.Context, publicID string, amountCents int64) error {
	subject := fmt.Sprintf("Deposit request from account %s", publicID)
	body := fmt.Sprintf("Account %s submitted a deposit request for %s. Review it in the admin panel.",
		publicID, utils.FormatCents(amountCents))
	return s.send(ctx, s.adminEmail, "Admin", subject, body)
}

func (s *sendgridEmailService) NotifyAdminWithdrawalRequested(ctx context.Context, publicID string, totalCents int64) error {
	subject := fmt.Sprintf("Withdrawal request from account %s", publicID)
	body := fmt.Sprintf("Account %s requested a withdrawal totalling %s (fee included). Review it in the admin panel.",
		publicID, utils.FormatCents(totalCents))
	return s.send(ctx, s.adminEmail, "Admin", subject, body)
}

func (s *sendgridEmailService) NotifySettlementReviewed(ctx context.Context, email, name string, entryType domain.EntryType, status domain.EntryStatus, amountCents int64, reason string) error {
	verb := "approved"
	if status == domain.EntryStatusRejected {
		verb = "rejected"
	}
	kind := "deposit"
	if entryType == domain.EntryTypeWithdrawal {
		kind = "withdrawal"
	}

	subject := fmt.Sprintf("Your %s of %s was %s", kind, utils.FormatCents(amountCents), verb)
	body := fmt.Sprintf("Hi %s,\n\nYour %s of %s has been %s.", name, kind, utils.FormatCents(amountCents), verb)
	if reason != "" {
		body += fmt.Sprintf("\nReason: %s", reason)
	}
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) NotifyAdminPendingSettlements(ctx context.Context, deposits, withdrawals int) error {
	if deposits == 0 && withdrawals == 0 {
		return nil
	}
	subject := "Settlement requests awaiting review"
	body := fmt.Sprintf("There are %d deposit and %d withdrawal requests pending for more than a day.",
		deposits, withdrawals)
	return s.send(ctx, s.adminEmail, "Admin", subject, body)
}

func (s *sendgridEmailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	if toEmail == "" {
		return nil
	}
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), body, "")
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
