package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
)

func TestIntentRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createIntentTables(t, db)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	intent := &entities.PaymentIntent{
		ID:        "pay-123",
		Provider:  entities.ProviderCard,
		Status:    entities.IntentStatusPending,
		BuyerID:   42,
		ProductID: 7,
		Amount:    "50.00",
		PayURL:    null.StringFrom("https://gateway.example/confirm/pay-123"),
	}
	require.NoError(t, repo.Create(ctx, intent))
	assert.False(t, intent.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, entities.ProviderCard, "pay-123")
	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusPending, got.Status)
	assert.Equal(t, int64(42), got.BuyerID)
	assert.Equal(t, uint(7), got.ProductID)
	assert.Equal(t, "https://gateway.example/confirm/pay-123", got.PayURL.String)

	// same id in another provider's table is a different record set
	_, err = repo.GetByID(ctx, entities.ProviderCrypto, "pay-123")
	assert.ErrorIs(t, err, domainerrors.ErrIntentNotFound)
}

func TestIntentRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	createIntentTables(t, db)
	repo := NewIntentRepository(db)

	_, err := repo.GetByID(context.Background(), entities.ProviderToken, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrIntentNotFound)
}

func TestIntentRepository_UnsupportedProvider(t *testing.T) {
	db := newTestDB(t)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, entities.PaymentProvider("PAYPAL"), "x")
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedProvider)

	err = repo.Create(ctx, &entities.PaymentIntent{Provider: entities.PaymentProvider("PAYPAL")})
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedProvider)

	_, err = repo.ListOpen(ctx, entities.PaymentProvider("PAYPAL"))
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedProvider)

	_, err = repo.Finalize(ctx, entities.PaymentProvider("PAYPAL"), "x", entities.IntentStatusFailed)
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedProvider)
}

func TestIntentRepository_ListOpen(t *testing.T) {
	db := newTestDB(t)
	createIntentTables(t, db)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	seed := []struct {
		id     string
		status entities.IntentStatus
	}{
		{"inv-1", entities.IntentStatusActive},
		{"inv-2", entities.IntentStatusSucceeded},
		{"inv-3", entities.IntentStatusPending},
		{"inv-4", entities.IntentStatusExpired},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(ctx, &entities.PaymentIntent{
			ID:       s.id,
			Provider: entities.ProviderCrypto,
			Status:   s.status,
			BuyerID:  1, ProductID: 1, Amount: "1.18",
		}))
	}

	open, err := repo.ListOpen(ctx, entities.ProviderCrypto)
	require.NoError(t, err)
	require.Len(t, open, 2)
	ids := []string{open[0].ID, open[1].ID}
	assert.ElementsMatch(t, []string{"inv-1", "inv-3"}, ids)
}

func TestIntentRepository_Finalize_AppliesOnce(t *testing.T) {
	db := newTestDB(t)
	createIntentTables(t, db)
	repo := NewIntentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.PaymentIntent{
		ID: "pay-9", Provider: entities.ProviderCard,
		Status: entities.IntentStatusPending, BuyerID: 1, ProductID: 1, Amount: "25.00",
	}))

	applied, err := repo.Finalize(ctx, entities.ProviderCard, "pay-9", entities.IntentStatusSucceeded)
	require.NoError(t, err)
	assert.True(t, applied)

	// second transition attempt must not take effect
	applied, err = repo.Finalize(ctx, entities.ProviderCard, "pay-9", entities.IntentStatusCanceled)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, entities.ProviderCard, "pay-9")
	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusSucceeded, got.Status)
}

func TestIntentRepository_Finalize_MissingIntent(t *testing.T) {
	db := newTestDB(t)
	createIntentTables(t, db)
	repo := NewIntentRepository(db)

	applied, err := repo.Finalize(context.Background(), entities.ProviderToken, "ghost", entities.IntentStatusFailed)
	assert.False(t, applied)
	assert.ErrorIs(t, err, domainerrors.ErrIntentNotFound)
}
