package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/schloss/pkg/config"
	"github.com/wonny/schloss/pkg/logger"
)

// Message is a plain-text mail
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
}

// Bytes renders RFC 5322 headers and a CRLF-terminated body
func (m Message) Bytes() []byte {
	var buf bytes.Buffer
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// Transport delivers a message authenticated as user with an OAuth2 token
type Transport interface {
	Send(ctx context.Context, msg Message, user, accessToken string) error
}

// SMTPTransport speaks SMTP with STARTTLS and AUTH XOAUTH2
// ⭐ SSOT: SMTP 연결은 여기서만
type SMTPTransport struct {
	host       string
	port       int
	localName  string
	tlsConfig  *tls.Config
	requireTLS bool
	timeout    time.Duration
	logger     *logger.Logger
}

// NewSMTPTransport creates a transport for cfg.SMTPHost:cfg.SMTPPort
func NewSMTPTransport(cfg config.MailConfig, log *logger.Logger) *SMTPTransport {
	return &SMTPTransport{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		localName:  "localhost",
		tlsConfig:  &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
		requireTLS: true,
		timeout:    30 * time.Second,
		logger:     log,
	}
}

// WithTLSConfig replaces the STARTTLS configuration
func (t *SMTPTransport) WithTLSConfig(c *tls.Config) *SMTPTransport {
	t.tlsConfig = c
	return t
}

// AllowPlaintext lets Send continue when the server offers no STARTTLS
func (t *SMTPTransport) AllowPlaintext() *SMTPTransport {
	t.requireTLS = false
	return t
}

// Send runs EHLO, STARTTLS, EHLO, AUTH XOAUTH2, MAIL, RCPT, DATA, QUIT
func (t *SMTPTransport) Send(ctx context.Context, msg Message, user, accessToken string) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))

	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.Hello(t.localName); err != nil {
		return fmt.Errorf("ehlo: %w", err)
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		// StartTLS re-issues EHLO on the encrypted connection
		if err := c.StartTLS(t.tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	} else if t.requireTLS {
		return fmt.Errorf("%s does not offer STARTTLS", addr)
	}

	if err := c.Auth(&xoauth2Auth{user: user, token: accessToken}); err != nil {
		return fmt.Errorf("auth xoauth2: %w", err)
	}

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}

	t.logger.WithFields(map[string]interface{}{
		"server": addr,
		"to":     msg.To,
	}).Debug("SMTP message accepted")

	return c.Quit()
}
