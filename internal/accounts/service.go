// Package accounts holds the per-shopper record (cart, wishlist, orders,
// settings) under "user:<email>" keys with get-or-default read semantics.
package accounts

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/events"
	"github.com/shopmesh/storefront/internal/kv"
	"github.com/shopmesh/storefront/internal/models"
	"github.com/shopmesh/storefront/internal/util"
)

// KeyPrefix namespaces user record keys in the store.
const KeyPrefix = "user:"

type Service struct {
	store  kv.Store
	bus    *events.Bus
	logger *slog.Logger
}

func NewService(store kv.Store, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// Get returns the record stored for email, or the default zero-value shape
// when no record exists. A missing record is not an error.
func (s *Service) Get(ctx context.Context, email string) (*models.UserRecord, error) {
	if err := util.ValidateEmail(email); err != nil {
		return nil, apierr.Validation("invalid email address")
	}

	raw, err := s.store.Get(ctx, KeyPrefix+email)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if raw == nil {
		return models.DefaultUserRecord(email), nil
	}

	var record models.UserRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, apierr.Internal(err)
	}
	record.Normalize()

	return &record, nil
}

// Put replaces the record wholesale. The email in the path wins over any
// email in the body.
func (s *Service) Put(ctx context.Context, email string, record *models.UserRecord) (*models.UserRecord, error) {
	if err := util.ValidateEmail(email); err != nil {
		return nil, apierr.Validation("invalid email address")
	}

	record.Email = email
	record.Normalize()

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := s.store.Set(ctx, KeyPrefix+email, raw); err != nil {
		return nil, apierr.Internal(err)
	}

	return record, nil
}

// PlaceOrder moves the current cart into a new order and empties the cart.
// The cart must not be empty. Currency defaults to "usd".
func (s *Service) PlaceOrder(ctx context.Context, email, currency string) (*models.Order, error) {
	record, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	if len(record.Cart) == 0 {
		return nil, apierr.Validation("cart is empty")
	}

	if currency == "" {
		currency = "usd"
	}

	total := 0.0
	for _, item := range record.Cart {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += item.Price * float64(qty)
	}

	order := models.Order{
		ID:       uuid.NewString(),
		Items:    record.Cart,
		Total:    total,
		Currency: currency,
		Status:   "pending",
		PlacedAt: time.Now().UTC(),
	}

	record.Orders = append([]models.Order{order}, record.Orders...)
	record.Cart = []models.CartItem{}

	if _, err := s.Put(ctx, email, record); err != nil {
		return nil, err
	}

	s.publish(events.TopicOrderPlaced, events.OrderPlaced{
		Email:    email,
		OrderID:  order.ID,
		Total:    order.Total,
		Currency: order.Currency,
		Items:    len(order.Items),
	})

	return &order, nil
}

func (s *Service) publish(topic string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(topic, payload); err != nil {
		s.logger.Error("failed to publish event", "topic", topic, "error", err)
	}
}
