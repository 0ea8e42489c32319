package reviews

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/shopmesh/storefront/internal/models"
)

type BunRepository struct {
	db bun.IDB
}

func NewBunRepository(db bun.IDB) Repository {
	return &BunRepository{db: db}
}

func (r *BunRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := r.db.NewSelect().
		Model(&reviews).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *BunRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error) {
	review := new(models.Review)
	err := r.db.NewSelect().
		Model(review).
		Where("product_id = ?", productID).
		Where("user_id = ?", userID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (r *BunRepository) Insert(ctx context.Context, review *models.Review) error {
	_, err := r.db.NewInsert().
		Model(review).
		Exec(ctx)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// isUniqueViolation detects a unique-constraint failure for the supported
// drivers (postgres error class 23505, sqlite message match).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type BunProfileRepository struct {
	db bun.IDB
}

func NewBunProfileRepository(db bun.IDB) ProfileRepository {
	return &BunProfileRepository{db: db}
}

func (r *BunProfileRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	profile := new(models.UserProfile)
	err := r.db.NewSelect().
		Model(profile).
		Where("email = ?", email).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *BunProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	_, err := r.db.NewInsert().
		Model(profile).
		Exec(ctx)
	if isUniqueViolation(err) {
		// profile already provisioned, e.g. a retried sign-up
		return nil
	}
	return err
}

func (r *BunProfileRepository) SetAvatar(ctx context.Context, email, url string) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserProfile)(nil)).
		Set("avatar_url = ?", url).
		Set("updated_at = ?", time.Now()).
		Where("email = ?", email).
		Exec(ctx)
	return err
}
