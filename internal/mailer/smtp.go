package mailer

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/shopmesh/storefront/config"
	"github.com/shopmesh/storefront/env"
)

type SMTPProvider struct {
	from string

	host string
	port int
	user string
	pass string
}

func NewSMTPProvider(cfg config.EmailConfig) (*SMTPProvider, error) {
	host := strings.TrimSpace(os.Getenv(env.EnvSMTPHost))
	if host == "" {
		return nil, fmt.Errorf("%s environment variable is not set", env.EnvSMTPHost)
	}

	portStr := strings.TrimSpace(os.Getenv(env.EnvSMTPPort))
	if portStr == "" {
		return nil, fmt.Errorf("%s environment variable is not set", env.EnvSMTPPort)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid integer: %w", env.EnvSMTPPort, err)
	}

	return &SMTPProvider{
		from: cfg.FromAddress,
		host: host,
		port: port,
		user: strings.TrimSpace(os.Getenv(env.EnvSMTPUser)),
		pass: strings.TrimSpace(os.Getenv(env.EnvSMTPPass)),
	}, nil
}

func (s *SMTPProvider) SendEmail(ctx context.Context, to string, subject string, text string, html string) error {
	msg := mail.NewMsg()

	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	if html != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
	}
	if s.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.pass),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}
