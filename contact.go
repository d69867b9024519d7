package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/portfolio/mailer"
)

const contactSubject = "Mail from Portfolio"

// Contact forwards contact form submissions to the site owner by email.
type Contact struct {
	mail    mailer.Transport
	timeout time.Duration
	log     zerolog.Logger
}

// NewContact creates a Contact that sends through mail and gives up on a
// submission after timeout.
func NewContact(mail mailer.Transport, timeout time.Duration, log zerolog.Logger) *Contact {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Contact{mail: mail, timeout: timeout, log: log}
}

// Send validates the submission and delivers one email for it. Any transport
// or authentication failure, a full queue, or running out of time is
// returned as an error wrapping a mailer sentinel (ErrDelivery,
// ErrQueueFull, ErrClosed).
func (c *Contact) Send(ctx context.Context, name, email, phone, message string) error {
	form := ContactForm{Name: name, Email: email, Phone: phone, Message: message}
	if err := form.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.mail.Send(ctx, FormatContactMessage(form)); err != nil {
		c.log.Warn().Err(err).Str("from", form.Email).Msg("contact message not delivered")
		return fmt.Errorf("send contact message: %w", err)
	}
	c.log.Info().Str("from", form.Email).Msg("contact message delivered")
	return nil
}

// FormatContactMessage builds the email sent for a contact submission.
func FormatContactMessage(f ContactForm) mailer.Message {
	return mailer.Message{
		Subject: contactSubject,
		ReplyTo: f.Email,
		Body: fmt.Sprintf("Name:%s,\nEmail:%s,\nPhone:%s,\nMessage:%s",
			f.Name, f.Email, f.Phone, f.Message),
	}
}
