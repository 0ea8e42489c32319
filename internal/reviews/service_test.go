package reviews

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmesh/storefront/internal/apierr"
)

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewMemoryRepository(), nil, logger)
}

func validInput() ReviewInput {
	return ReviewInput{
		ProductID:  "hp-100",
		UserID:     "user-1",
		Rating:     4,
		Comment:    "Solid build, great sound.",
		AuthorName: "Ada",
	}
}

func TestService_AddAndList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	review, err := svc.Add(ctx, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.False(t, review.CreatedAt.IsZero())

	reviews, err := svc.ListByProduct(ctx, "hp-100")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
}

func TestService_AddRejectsOutOfRangeRating(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6} {
		input := validInput()
		input.Rating = rating

		_, err := svc.Add(ctx, input)
		require.Error(t, err, "rating %d must be rejected", rating)

		var apiErr *apierr.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, apierr.KindValidation, apiErr.Kind)
	}
}

func TestService_AddRejectsMissingFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	input := validInput()
	input.ProductID = ""
	_, err := svc.Add(ctx, input)
	assert.Error(t, err)

	input = validInput()
	input.UserID = ""
	_, err = svc.Add(ctx, input)
	assert.Error(t, err)
}

func TestService_SecondReviewBySameUserConflicts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, validInput())
	require.NoError(t, err)

	second := validInput()
	second.Rating = 1
	_, err = svc.Add(ctx, second)
	require.Error(t, err)

	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierr.KindConflict, apiErr.Kind)

	// a different user may still review the same product
	other := validInput()
	other.UserID = "user-2"
	_, err = svc.Add(ctx, other)
	assert.NoError(t, err)
}

func TestService_DeleteThenReReview(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	review, err := svc.Add(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, review.ID))

	_, err = svc.Add(ctx, validInput())
	assert.NoError(t, err, "deleting the review frees the (product, user) slot")
}

func TestService_SummaryZeroReviews(t *testing.T) {
	svc := newTestService()

	summary, err := svc.Summary(context.Background(), "hp-100")
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.Zero(t, summary.AverageRating)
}

func TestService_SummaryAverages(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i, rating := range []int{5, 4, 3} {
		input := validInput()
		input.UserID = string(rune('a' + i))
		input.Rating = rating
		_, err := svc.Add(ctx, input)
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, "hp-100")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 4.0, summary.AverageRating)
}
