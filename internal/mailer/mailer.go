// Package mailer sends order confirmation emails. It subscribes to the
// order.placed topic; a failed send is logged and dropped, it never fails
// the checkout request that triggered it.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopmesh/storefront/config"
	"github.com/shopmesh/storefront/internal/events"
)

// Provider abstracts the concrete email backend (SMTP or Resend).
type Provider interface {
	SendEmail(ctx context.Context, to string, subject string, text string, html string) error
}

type Mailer struct {
	provider Provider
	from     string
	logger   *slog.Logger
}

func New(cfg config.EmailConfig, logger *slog.Logger) (*Mailer, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.Provider {
	case "smtp":
		provider, err = NewSMTPProvider(cfg)
	case "resend":
		provider, err = NewResendProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &Mailer{
		provider: provider,
		from:     cfg.FromAddress,
		logger:   logger,
	}, nil
}

// Run consumes order.placed events until ctx is cancelled. Intended to run
// in its own goroutine.
func (m *Mailer) Run(ctx context.Context, bus *events.Bus) error {
	messages, err := bus.Subscribe(ctx, events.TopicOrderPlaced)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.TopicOrderPlaced, err)
	}

	for msg := range messages {
		var event events.OrderPlaced
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			m.logger.Error("undecodable order event", "error", err)
			msg.Ack()
			continue
		}

		if err := m.sendConfirmation(ctx, event); err != nil {
			m.logger.Error("failed to send order confirmation",
				"order_id", event.OrderID, "error", err)
		}
		msg.Ack()
	}

	return nil
}

func (m *Mailer) sendConfirmation(ctx context.Context, event events.OrderPlaced) error {
	subject := fmt.Sprintf("Order confirmation %s", event.OrderID)
	text := fmt.Sprintf(
		"Thanks for your order!\n\nOrder %s: %d item(s), total %.2f %s.\n",
		event.OrderID, event.Items, event.Total, event.Currency,
	)

	return m.provider.SendEmail(ctx, event.Email, subject, text, "")
}
