package skills

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"zara/internal/router"
)

// Mailer delivers one plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends mail through an authenticated SMTP relay.
type SMTP struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return fmt.Errorf("smtp: %w", ErrNotConfigured)
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Email composes a message from "send email to <contact> [subject <s>] saying <body>".
// Contacts are looked up as the fact "email <contact>" or spelled out
// ("john at example dot com").
type Email struct {
	Mailer Mailer
	Facts  FactStore
}

const DefaultSubject = "Message from Zara"

type draft struct {
	contact string
	subject string
	body    string
}

var errNoBody = errors.New("missing message body")

func parseDraft(payload string) (draft, error) {
	p := strings.TrimSpace(payload)
	p = strings.TrimPrefix(p, "to ")

	var d draft
	head, body, ok := strings.Cut(p, " saying ")
	if !ok {
		head, body, ok = strings.Cut(p, " that says ")
	}
	if !ok || strings.TrimSpace(body) == "" {
		return d, errNoBody
	}
	d.body = strings.TrimSpace(body)

	contact, subject, _ := strings.Cut(head, " subject ")
	d.contact = strings.TrimSpace(strings.TrimPrefix(contact, "to "))
	d.subject = strings.TrimSpace(subject)
	if d.subject == "" {
		d.subject = DefaultSubject
	}
	return d, nil
}

// spokenAddress turns "john dot doe at example dot com" into an address.
func spokenAddress(s string) (string, bool) {
	s = strings.ReplaceAll(s, " at ", "@")
	s = strings.ReplaceAll(s, " dot ", ".")
	s = strings.ReplaceAll(s, " ", "")
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", false
	}
	return addr.Address, true
}

func (e Email) address(ctx context.Context, contact string) (string, error) {
	if e.Facts != nil {
		addr, ok, err := e.Facts.Fact(ctx, "email "+contact)
		if err != nil {
			return "", err
		}
		if ok {
			return addr, nil
		}
	}
	if addr, ok := spokenAddress(contact); ok {
		return addr, nil
	}
	return "", router.NotFound(fmt.Sprintf("I don't have an email address for %s.", contact))
}

func (e Email) Handle(ctx context.Context, req router.Request) (string, error) {
	d, err := parseDraft(req.Payload)
	if err != nil || d.contact == "" {
		return "Tell me who to email and what to say, like: send email to john saying hello.", nil
	}

	to, err := e.address(ctx, d.contact)
	if err != nil {
		return "", err
	}
	if err := e.Mailer.Send(ctx, to, d.subject, d.body); err != nil {
		return "", fmt.Errorf("email %s: %w", d.contact, err)
	}
	return "Email has been sent to " + d.contact + ".", nil
}
