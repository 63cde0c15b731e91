package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hvu/bankcore/internal/domain"
)

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewEmailSender creates a new EmailSender.
func NewEmailSender(host string, port int, username, pass, from string) *EmailSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, pass, host)
	}

	return &EmailSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

// Send composes and sends the notification email.
func (s *EmailSender) Send(ctx context.Context, n domain.Notification) error {
	subject, body := composeMessage(n)

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + n.Email,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(s.addr, s.auth, s.from, []string{n.Email}, []byte(msg))
}

func composeMessage(n domain.Notification) (subject, body string) {
	switch n.Kind {
	case domain.EventDeposit:
		subject = "Deposit successful"
		body = fmt.Sprintf("Dear %s,\n\nYou have deposited %s.\nYour new balance is %s.",
			n.CustomerName, n.Amount, n.NewBalance)
	case domain.EventWithdrawal:
		subject = "Withdrawal successful"
		body = fmt.Sprintf("Dear %s,\n\nYou have withdrawn %s.\nYour new balance is %s.",
			n.CustomerName, n.Amount, n.NewBalance)
	case domain.EventTransferSent:
		subject = "Transfer successful"
		body = fmt.Sprintf("Dear %s,\n\nYou have sent %s to %s.\nYour new balance is %s.",
			n.CustomerName, n.Amount, n.Counterparty, n.NewBalance)
	case domain.EventTransferReceived:
		subject = "Transfer received"
		body = fmt.Sprintf("Dear %s,\n\nYou have received %s from %s.\nYour new balance is %s.",
			n.CustomerName, n.Amount, n.Counterparty, n.NewBalance)
	default:
		subject = "Account activity"
		body = fmt.Sprintf("Dear %s,\n\nThere was activity on your account.\nYour new balance is %s.",
			n.CustomerName, n.NewBalance)
	}

	body += "\n\nThank you for using our service."

	return subject, body
}

// LogSender writes notifications to the log instead of delivering
// them. Used when no SMTP host is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification.
func (s *LogSender) Send(ctx context.Context, n domain.Notification) error {
	s.logger.Info().
		Str("customer_id", n.CustomerID).
		Str("kind", n.Kind).
		Str("amount", n.Amount.String()).
		Str("balance", n.NewBalance.String()).
		Msg("notification")

	return nil
}
