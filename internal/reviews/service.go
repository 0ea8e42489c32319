package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/events"
	"github.com/shopmesh/storefront/internal/models"
	"github.com/shopmesh/storefront/internal/util"
)

// ReviewInput is the caller-supplied part of a new review. The rating range
// is validated here, server side, instead of trusting the client.
type ReviewInput struct {
	ProductID  string `json:"product_id" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
	AuthorName string `json:"author_name" validate:"max=120"`
}

type Service struct {
	repo   Repository
	bus    *events.Bus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return reviews, nil
}

// Add inserts a review. A second review by the same user for the same
// product surfaces as a conflict from the unique constraint.
func (s *Service) Add(ctx context.Context, input ReviewInput) (*models.Review, error) {
	if err := util.ValidateStruct(&input); err != nil {
		return nil, apierr.Validation("invalid review: %v", err)
	}

	review := &models.Review{
		ID:         uuid.NewString(),
		ProductID:  input.ProductID,
		UserID:     input.UserID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		AuthorName: input.AuthorName,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, review); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apierr.Conflict("%v", err)
		}
		return nil, apierr.Internal(err)
	}

	s.publish(events.TopicReviewAdded, events.ReviewAdded{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	})

	return review, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

// Summary derives the average rating over a product's reviews. Zero reviews
// yields {0, 0}.
func (s *Service) Summary(ctx context.Context, productID string) (*models.ReviewSummary, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	summary := &models.ReviewSummary{Count: len(reviews)}
	if len(reviews) == 0 {
		return summary, nil
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
	}
	summary.AverageRating = float64(total) / float64(len(reviews))

	return summary, nil
}

func (s *Service) publish(topic string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(topic, payload); err != nil {
		s.logger.Error("failed to publish event", "topic", topic, "error", err)
	}
}
