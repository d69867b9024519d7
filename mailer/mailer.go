// Package mailer sends plain-text email over SMTP. A Dispatcher serializes
// deliveries on one worker and reports each outcome back to its sender.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrDelivery wraps any transport or authentication failure.
	ErrDelivery = errors.New("mail delivery failed")
	// ErrQueueFull is returned by Dispatcher.Send when no slot is free.
	ErrQueueFull = errors.New("mail queue full")
	// ErrClosed is returned by Dispatcher.Send after Close.
	ErrClosed = errors.New("mailer closed")
)

// Message is a plain-text email. Sender and recipient are fixed by the
// Transport.
type Message struct {
	Subject string
	ReplyTo string
	Body    string
}

// Transport delivers a single message.
type Transport interface {
	Send(ctx context.Context, m Message) error
}

// SMTPConfig describes an authenticated SMTP submission account.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	To       string
}

// SMTPTransport sends messages with STARTTLS and PLAIN auth.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport returns a transport for cfg.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPTransport{cfg: cfg}
}

// Send dials the server, upgrades to TLS when offered, authenticates and
// submits m. The context bounds the whole exchange.
func (t *SMTPTransport) Send(ctx context.Context, m Message) error {
	if err := t.send(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

func (t *SMTPTransport) send(ctx context.Context, m Message) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
			return err
		}
	}
	if t.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(t.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(t.cfg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(Compose(t.cfg.From, t.cfg.To, m, time.Now())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Compose renders m as an RFC 5322 message with CRLF line endings.
func Compose(from, to string, m Message, date time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(stripNewlines(v))
		b.WriteString("\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", m.Subject)
	header("Date", date.Format(time.RFC1123Z))
	if m.ReplyTo != "" {
		header("Reply-To", m.ReplyTo)
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.Bytes()
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
