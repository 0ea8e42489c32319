// Package reviews provides relational access to product reviews and user
// profiles. Unlike the catalog, these are proper rows: review uniqueness per
// (product, user) is a database constraint, not an application-level check.
package reviews

import (
	"context"
	"errors"

	"github.com/shopmesh/storefront/internal/models"
)

// ErrDuplicate is returned by Insert when the (product, user) pair already
// has a review. It maps to a conflict at the HTTP boundary.
var ErrDuplicate = errors.New("user has already reviewed this product")

type Repository interface {
	// ListByProduct returns a product's reviews ordered by creation time,
	// most recent first.
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	// GetByProductAndUser returns (nil, nil) when no review matches.
	GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error)
	Insert(ctx context.Context, review *models.Review) error
	// Delete removes a review by id. Deleting an absent id is not an error;
	// no ownership check happens at this layer.
	Delete(ctx context.Context, id string) error
}

type ProfileRepository interface {
	// GetByEmail returns (nil, nil) when no profile exists.
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	// SetAvatar updates the avatar reference; an empty url clears it.
	SetAvatar(ctx context.Context, email, url string) error
}
