package channels

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/secretary-dev/secretary/internal/models"
)

// SMTPChannel delivers alert emails through the user's own SMTP server,
// as a multipart/alternative message with text and HTML parts.
type SMTPChannel struct {
	DialTimeout time.Duration
}

func NewSMTPChannel() *SMTPChannel {
	return &SMTPChannel{DialTimeout: 30 * time.Second}
}

// SendEmail delivers an alert to the account owner's own address.
func (c *SMTPChannel) SendEmail(user *models.User, subject, text, html string) error {
	return c.Send(user, user.Email, subject, text, html)
}

// Send delivers a message to an arbitrary recipient through the user's SMTP
// server. Also backs the outbound compose endpoint.
func (c *SMTPChannel) Send(user *models.User, to, subject, text, html string) error {
	if user.SMTPServer == "" || user.MailboxUser == "" {
		return fmt.Errorf("user %d has no SMTP server configured", user.ID)
	}

	addr := fmt.Sprintf("%s:%d", user.SMTPServer, user.SMTPPort)

	conn, err := net.DialTimeout("tcp", addr, c.DialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, user.SMTPServer)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: user.SMTPServer}); err != nil {
			return fmt.Errorf("SMTP STARTTLS: %w", err)
		}
	}

	auth := smtp.PlainAuth("", user.MailboxUser, user.MailboxPassword, user.SMTPServer)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	if err := client.Mail(user.MailboxUser); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	msg := buildMIMEMessage(user.MailboxUser, to, subject, text, html)

	if _, err := writer.Write([]byte(msg)); err != nil {
		writer.Close()
		return fmt.Errorf("writing message: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return client.Quit()
}

func buildMIMEMessage(from, to, subject, text, html string) string {
	const boundary = "secretary-alt-boundary"

	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if html == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(text)
		b.WriteString("\r\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return b.String()
}
