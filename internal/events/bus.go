// Package events carries the domain events published by the services over a
// Watermill in-process Pub/Sub. Subscribers (the mailer) run in their own
// goroutines; publishing never blocks a request on subscriber work.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicProductCreated = "product.created"
	TopicReviewAdded    = "review.added"
	TopicOrderPlaced    = "order.placed"
)

// ProductCreated is published after a product is first written to the store.
type ProductCreated struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
}

// ReviewAdded is published after a review row is inserted.
type ReviewAdded struct {
	ReviewID  string `json:"review_id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
}

// OrderPlaced is published after checkout moves a cart into an order.
type OrderPlaced struct {
	Email    string  `json:"email"`
	OrderID  string  `json:"order_id"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Items    int     `json:"items"`
}

// Bus wraps a Watermill GoChannel Pub/Sub with JSON payload marshalling.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

func NewGoChannelBus(logger *slog.Logger) *Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
		},
		watermill.NewSlogLogger(logger),
	)

	return &Bus{
		pubSub: pubSub,
		logger: logger,
	}
}

// Publish marshals payload to JSON and publishes it on topic.
func (b *Bus) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return b.pubSub.Publish(topic, msg)
}

// Subscribe returns a channel of raw messages for topic. Consumers must Ack.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
