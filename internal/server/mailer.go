package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/wheelx-dev/wheelx/internal/config"
)

// ErrMailerDisabled is returned when no SMTP relay is configured.
var ErrMailerDisabled = errors.New("smtp relay not configured")

// Mailer delivers partner inquiries.
type Mailer interface {
	SendInquiry(ctx context.Context, in PartnerInquiry) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends inquiries through an SMTP relay with STARTTLS when the
// relay offers it.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
	now  func() time.Time
}

// NewSMTPMailer returns a mailer for cfg. It fails on every send when cfg
// is not enabled.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

func (m *SMTPMailer) SendInquiry(ctx context.Context, in PartnerInquiry) error {
	if !m.cfg.Enabled() {
		return ErrMailerDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.message(in)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server)
	}

	addr := net.JoinHostPort(m.cfg.Server, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.sender(), m.cfg.To, msg); err != nil {
		return fmt.Errorf("failed to send inquiry: %w", err)
	}
	return nil
}

func (m *SMTPMailer) sender() string {
	if m.cfg.Username != "" {
		return m.cfg.Username
	}
	return "partners@wheelx.app"
}

// message renders the full RFC 5322 message.
func (m *SMTPMailer) message(in PartnerInquiry) ([]byte, error) {
	var body bytes.Buffer
	if err := inquiryTemplate.Execute(&body, struct {
		PartnerInquiry
		Year int
	}{in, m.now().Year()}); err != nil {
		return nil, fmt.Errorf("failed to render inquiry: %w", err)
	}

	subject := fmt.Sprintf("Partnership Inquiry: %s - %s", headerSafe(in.Category), headerSafe(in.Company))

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", mime.QEncoding.Encode("utf-8", "WheelX Partners")+" <"+m.sender()+">")
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.cfg.To, ", "))
	fmt.Fprintf(&msg, "Reply-To: %s\r\n", headerSafe(in.Email))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// headerSafe drops line breaks so user input cannot add headers.
func headerSafe(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

var inquiryTemplate = template.Must(template.New("inquiry").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="background: #FFD700; padding: 20px; text-align: center;">New Partnership Inquiry</h1>
  <p><strong>Name:</strong><br>{{.Name}}</p>
  <p><strong>Email:</strong><br>{{.Email}}</p>
  <p><strong>Company:</strong><br>{{.Company}}</p>
  <p><strong>Partnership Category:</strong><br>{{.Category}}</p>
  <p><strong>Message:</strong><br>{{range $i, $l := lines .Message}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
  <p style="text-align: center; color: #888; font-size: 12px;">This email was sent from the WheelX Partners contact form<br>&copy; {{.Year}} WheelX. All rights reserved.</p>
</div>
</body>
</html>
`))
