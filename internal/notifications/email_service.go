package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"aerolink/internal/shared/config"
	"aerolink/pkg/logger"
)

// EmailService delivers a rendered notification
type EmailService interface {
	Send(ctx context.Context, notification *EmailNotification) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

func NewSMTPConfig(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  "Aerolink",
		UseTLS:    true,
	}
}

func validateSMTPConfig(cfg *SMTPConfig) error {
	if cfg == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if cfg.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if cfg.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if cfg.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

type SMTPEmailService struct {
	config *SMTPConfig
	log    *logger.Logger
}

func NewSMTPEmailService(cfg *SMTPConfig, log *logger.Logger) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailService{config: cfg, log: log}, nil
}

func (s *SMTPEmailService) Send(ctx context.Context, n *EmailNotification) error {
	htmlBody, textBody, err := renderContent(n)
	if err != nil {
		return fmt.Errorf("failed to generate email content: %w", err)
	}

	message := s.buildMessage(n.RecipientEmail, n.Subject, htmlBody, textBody)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, n.RecipientEmail, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{n.RecipientEmail}, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.InfoWithContext(ctx, "email sent", map[string]interface{}{
		"type":      n.Type,
		"recipient": n.RecipientEmail,
	})
	return nil
}

func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	if textBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, textBody)
	}
	if htmlBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

var (
	htmlTemplates = map[NotificationType]*template.Template{
		NotificationTypeVerifyEmail: template.Must(template.New("verify").Parse(
			`<h2>Confirm your email</h2>
<p>Hi {{.name}},</p>
<p>Please confirm your Aerolink account by opening <a href="{{.verify_url}}">this link</a>.</p>
<p>The link expires at {{.expires_at}}.</p>`)),
		NotificationTypeBookingConfirmed: template.Must(template.New("booking").Parse(
			`<h2>Booking confirmed</h2>
<p>Hi {{.name}},</p>
<p>Your booking <strong>{{.reference}}</strong> on flight {{.flight_number}} ({{.route}}) is confirmed.</p>
<p>Departure: {{.departure_time}}<br>Seats: {{.seats}}<br>Total: {{.total}} {{.currency}}</p>`)),
	}

	textTemplates = map[NotificationType]*texttemplate.Template{
		NotificationTypeVerifyEmail: texttemplate.Must(texttemplate.New("verify").Parse(
			"Hi {{.name}},\n\nConfirm your Aerolink account: {{.verify_url}}\nThe link expires at {{.expires_at}}.\n")),
		NotificationTypeBookingConfirmed: texttemplate.Must(texttemplate.New("booking").Parse(
			"Hi {{.name}},\n\nBooking {{.reference}} on flight {{.flight_number}} ({{.route}}) is confirmed.\nDeparture: {{.departure_time}}\nSeats: {{.seats}}\nTotal: {{.total}} {{.currency}}\n")),
	}
)

func renderContent(n *EmailNotification) (string, string, error) {
	htmlTmpl, ok := htmlTemplates[n.Type]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %s", n.Type)
	}

	data := make(map[string]interface{}, len(n.TemplateData)+1)
	for k, v := range n.TemplateData {
		data[k] = v
	}
	data["name"] = n.RecipientName

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	if err := textTemplates[n.Type].Execute(&textBuf, data); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}

// LogEmailService renders and logs emails instead of sending them. Used when
// SMTP is not configured and in tests.
type LogEmailService struct {
	log *logger.Logger

	mu   sync.Mutex
	sent []*EmailNotification
}

func NewLogEmailService(log *logger.Logger) *LogEmailService {
	return &LogEmailService{log: log}
}

func (s *LogEmailService) Send(ctx context.Context, n *EmailNotification) error {
	_, text, err := renderContent(n)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sent = append(s.sent, n)
	s.mu.Unlock()

	s.log.InfoWithContext(ctx, "email (not sent, SMTP disabled)", map[string]interface{}{
		"type":      n.Type,
		"recipient": n.RecipientEmail,
		"subject":   n.Subject,
		"body":      text,
	})
	return nil
}

// Sent returns what has been delivered so far
func (s *LogEmailService) Sent() []*EmailNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*EmailNotification, len(s.sent))
	copy(out, s.sent)
	return out
}
