package auth

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// MailMessage is a single outbound email.
type MailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Mailer sends transactional email. Delivery failures are reported back to the
// caller but lifecycle operations treat them as non fatal.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// SMTPConfig holds the dialer options for the gomail backed mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail over SMTP using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		mail.SetBody("text/html", msg.Body)
	} else {
		mail.SetBody("text/plain", msg.Body)
	}

	return m.dialer.DialAndSend(mail)
}

// LoggerMailer writes mail to the logger instead of the wire. Useful for
// development and tests.
type LoggerMailer struct {
	logger Logger
}

var _ Mailer = (*LoggerMailer)(nil)

func NewLoggerMailer(logger Logger) *LoggerMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LoggerMailer{logger: logger}
}

func (m *LoggerMailer) Send(_ context.Context, msg MailMessage) error {
	m.logger.Info("mail to=%s subject=%q body=%q", msg.To, msg.Subject, msg.Body)
	return nil
}

// WelcomeEmail builds the message sent after registration.
func WelcomeEmail(to, name string) MailMessage {
	return MailMessage{
		To:      to,
		Subject: "Welcome!",
		Body:    fmt.Sprintf("Hi %s, your account is ready.", name),
	}
}

// PasswordResetEmail builds the message carrying the plaintext reset secret.
// Only the sha256 digest of the secret is ever stored.
func PasswordResetEmail(to, baseURL, secret string) MailMessage {
	return MailMessage{
		To:      to,
		Subject: "Your password reset token (valid for 15 minutes)",
		Body: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password to: %s/reset-password/%s\nIf you didn't forget your password, please ignore this email.",
			baseURL, secret,
		),
	}
}

// sendMailAsync delivers mail in the background. The primary operation never
// fails on delivery errors; they are logged and surfaced to the activity sink.
func sendMailAsync(mailer Mailer, logger Logger, sink ActivitySink, userID string, msg MailMessage) {
	if mailer == nil {
		return
	}

	if logger == nil {
		logger = defLogger{}
	}

	go func() {
		ctx := context.Background()
		if err := mailer.Send(ctx, msg); err != nil {
			logger.Error("mail delivery failed to=%s subject=%q: %v", msg.To, msg.Subject, err)
			recordActivity(ctx, sink, logger, ActivityEvent{
				EventType: ActivityEventMailDeliveryFailed,
				Actor:     ActorRef{Type: "system"},
				UserID:    userID,
				Metadata: map[string]any{
					"subject": msg.Subject,
					"error":   err.Error(),
				},
			})
		}
	}()
}
