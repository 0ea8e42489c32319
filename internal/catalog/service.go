// Package catalog implements product storage over the KV store. Products
// live under "product:<id>" keys; every operation is a single read or a
// single read-modify-write against the store.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/events"
	"github.com/shopmesh/storefront/internal/kv"
	"github.com/shopmesh/storefront/internal/models"
	"github.com/shopmesh/storefront/internal/util"
)

// KeyPrefix namespaces product keys in the store.
const KeyPrefix = "product:"

// BulkDeleteAll is the bulk-delete action that purges the whole catalog.
const BulkDeleteAll = "purge"

type Service struct {
	store  kv.Store
	bus    *events.Bus
	logger *slog.Logger
}

// NewService creates the catalog service. The store is injected so tests can
// substitute an in-memory fake. bus may be nil to disable event publishing.
func NewService(store kv.Store, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// List returns every product in the catalog. An empty catalog yields an
// empty slice, never an error. Order is unspecified.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	entries, err := s.store.GetByPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	products := make([]models.Product, 0, len(entries))
	for _, entry := range entries {
		var p models.Product
		if err := json.Unmarshal(entry.Value, &p); err != nil {
			s.logger.Error("skipping undecodable product entry", "key", entry.Key, "error", err)
			continue
		}
		products = append(products, p)
	}

	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	raw, err := s.store.Get(ctx, KeyPrefix+id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if raw == nil {
		return nil, apierr.NotFound("product %s not found", id)
	}

	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apierr.Internal(err)
	}
	return &p, nil
}

// Create stores a new product. When no identifier is supplied one is
// assigned from a UUID, making collisions negligible.
func (s *Service) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := s.store.Set(ctx, KeyPrefix+p.ID, raw); err != nil {
		return nil, apierr.Internal(err)
	}

	s.publish(events.TopicProductCreated, events.ProductCreated{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
	})

	return &p, nil
}

// BulkCreate stores many products, returning how many were written. The
// whole batch is validated before anything is stored.
func (s *Service) BulkCreate(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, apierr.Validation("no products supplied")
	}

	for i := range products {
		if err := validateProduct(&products[i]); err != nil {
			return 0, err
		}
	}

	count := 0
	for i := range products {
		if _, err := s.Create(ctx, products[i]); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// Update shallow-merges patch into the stored product: top-level fields in
// the patch replace the stored ones wholesale, unmentioned fields are
// preserved. The product must already exist.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*models.Product, error) {
	raw, err := s.store.Get(ctx, KeyPrefix+id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if raw == nil {
		return nil, apierr.NotFound("product %s not found", id)
	}

	current := make(map[string]any)
	if err := json.Unmarshal(raw, &current); err != nil {
		return nil, apierr.Internal(err)
	}

	for field, value := range patch {
		if field == "id" {
			// the key is the identity; it does not move
			continue
		}
		current[field] = value
	}

	merged, err := json.Marshal(current)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	var p models.Product
	if err := json.Unmarshal(merged, &p); err != nil {
		return nil, apierr.Validation("invalid product update: %v", err)
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, KeyPrefix+id, merged); err != nil {
		return nil, apierr.Internal(err)
	}

	return &p, nil
}

// Delete removes a product. Deleting an absent product still succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, KeyPrefix+id); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

// BulkDelete removes products by action: "purge" empties the catalog, a
// known category label removes that category, anything else is rejected.
// Returns the number of deleted entries.
func (s *Service) BulkDelete(ctx context.Context, action string) (int, error) {
	if action != BulkDeleteAll && !models.ValidCategory(action) {
		return 0, apierr.Validation("unknown bulk delete action %q", action)
	}

	entries, err := s.store.GetByPrefix(ctx, KeyPrefix)
	if err != nil {
		return 0, apierr.Internal(err)
	}

	count := 0
	for _, entry := range entries {
		if action != BulkDeleteAll {
			var p models.Product
			if err := json.Unmarshal(entry.Value, &p); err != nil {
				s.logger.Error("skipping undecodable product entry", "key", entry.Key, "error", err)
				continue
			}
			if p.Category != action {
				continue
			}
		}

		if err := s.store.Delete(ctx, entry.Key); err != nil {
			return count, apierr.Internal(err)
		}
		count++
	}

	return count, nil
}

func (s *Service) publish(topic string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(topic, payload); err != nil {
		s.logger.Error("failed to publish event", "topic", topic, "error", err)
	}
}

func validateProduct(p *models.Product) error {
	if err := util.ValidateStruct(p); err != nil {
		return apierr.Validation("invalid product: %v", err)
	}
	if !models.ValidCategory(p.Category) {
		return apierr.Validation("unknown category %q", p.Category)
	}
	return nil
}
