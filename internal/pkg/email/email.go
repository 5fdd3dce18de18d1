package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	texttemplate "text/template"

	"github.com/cmlabs-hris/office-portal-go/internal/config"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Template names, each backed by a .html and a .txt file.
const (
	TemplateRequestSubmitted = "request_submitted"
	TemplateRequestApproved  = "request_approved"
	TemplateRequestRejected  = "request_rejected"
)

type Recipient struct {
	Email string
	Name  string
}

type Detail struct {
	Label string
	Value string
}

// RequestEmail is the data rendered into the request lifecycle templates.
type RequestEmail struct {
	Template      string
	Subject       string
	RecipientName string
	ActorName     string
	RequestLabel  string
	Summary       string
	Details       []Detail
	Reason        string
	PortalURL     string
}

// EmailService defines the interface for sending emails
type EmailService interface {
	// SendRequestEmail sends one message to one recipient. There is no retry;
	// the delivery error is returned to the caller.
	SendRequestEmail(to Recipient, data RequestEmail) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg  config.SMTPConfig
	html *htmltemplate.Template
	text *texttemplate.Template
	send sendFunc
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail)
}

func newEmailService(cfg config.SMTPConfig, send sendFunc) (*emailServiceImpl, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html email templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text email templates: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &emailServiceImpl{cfg: cfg, html: html, text: text, send: send}, nil
}

func (s *emailServiceImpl) SendRequestEmail(to Recipient, data RequestEmail) error {
	if to.Email == "" {
		return fmt.Errorf("recipient email is empty")
	}
	if data.RecipientName == "" {
		data.RecipientName = to.Name
	}

	var htmlBody, textBody bytes.Buffer
	if err := s.html.ExecuteTemplate(&htmlBody, data.Template+".html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	if err := s.text.ExecuteTemplate(&textBody, data.Template+".txt", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendMultipart(to, data.Subject, textBody.Bytes(), htmlBody.Bytes())
}

func (s *emailServiceImpl) sendMultipart(to Recipient, subject string, textBody, htmlBody []byte) error {
	// Skip sending if SMTP credentials are not configured
	if s.cfg.Username == "" || s.cfg.Password == "" {
		slog.Warn("SMTP credentials not configured, skipping email send", "to", to.Email, "subject", subject)
		return nil
	}

	msg, err := buildMessage(s.cfg.FromName, s.cfg.From, to, subject, textBody, htmlBody)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	if err := s.send(addr, auth, s.cfg.From, []string{to.Email}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to.Email, err)
	}
	slog.Info("Email sent successfully", "to", to.Email, "subject", subject)
	return nil
}

func buildMessage(fromName, from string, to Recipient, subject string, textBody, htmlBody []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", fromName), from)
	if to.Name != "" {
		fmt.Fprintf(&buf, "To: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", to.Name), to.Email)
	} else {
		fmt.Fprintf(&buf, "To: %s\r\n", to.Email)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	parts := []struct {
		contentType string
		body        []byte
	}{
		{"text/plain; charset=\"UTF-8\"", textBody},
		{"text/html; charset=\"UTF-8\"", htmlBody},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, fmt.Errorf("failed to build email part: %w", err)
		}
		if _, err := w.Write(p.body); err != nil {
			return nil, fmt.Errorf("failed to write email part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish email: %w", err)
	}
	return buf.Bytes(), nil
}
