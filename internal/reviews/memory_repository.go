package reviews

import (
	"context"
	"sort"
	"sync"

	"github.com/shopmesh/storefront/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests and local
// development. It enforces the same (product, user) uniqueness the database
// constraint does.
type MemoryRepository struct {
	mu      sync.RWMutex
	reviews map[string]models.Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reviews: make(map[string]models.Review)}
}

func (r *MemoryRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Review, 0)
	for _, review := range r.reviews {
		if review.ProductID == productID {
			result = append(result, review)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MemoryRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, review := range r.reviews {
		if review.ProductID == productID && review.UserID == userID {
			found := review
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.ProductID == review.ProductID && existing.UserID == review.UserID {
			return ErrDuplicate
		}
	}

	r.reviews[review.ID] = *review
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.reviews, id)
	return nil
}

// MemoryProfileRepository is the in-memory ProfileRepository counterpart.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]models.UserProfile)}
}

func (r *MemoryProfileRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[email]
	if !exists {
		return nil, nil
	}
	found := profile
	return &found, nil
}

func (r *MemoryProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.Email]; exists {
		return nil
	}
	r.profiles[profile.Email] = *profile
	return nil
}

func (r *MemoryProfileRepository) SetAvatar(ctx context.Context, email, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, exists := r.profiles[email]
	if !exists {
		return nil
	}
	profile.AvatarURL = url
	r.profiles[email] = profile
	return nil
}
