package mailer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/shopmesh/storefront/config"
	"github.com/shopmesh/storefront/env"
)

type ResendProvider struct {
	from   string
	client *resend.Client
}

func NewResendProvider(cfg config.EmailConfig) (*ResendProvider, error) {
	apiKey := strings.TrimSpace(os.Getenv(env.EnvResendApiKey))
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", env.EnvResendApiKey)
	}

	return &ResendProvider{
		from:   cfg.FromAddress,
		client: resend.NewClient(apiKey),
	}, nil
}

func (r *ResendProvider) SendEmail(ctx context.Context, to string, subject string, text string, html string) error {
	if text == "" && html == "" {
		return fmt.Errorf("email must have at least a text or html body")
	}

	params := &resend.SendEmailRequest{
		To:      []string{to},
		From:    r.from,
		Subject: subject,
		Text:    text,
		Html:    html,
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	if sent == nil || sent.Id == "" {
		return fmt.Errorf("resend send failed: empty response")
	}

	return nil
}
