package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
)

const adminID int64 = 7

func newAdminUC(t *testing.T, products *mockProductRepo) *AdminUsecase {
	t.Helper()
	return NewAdminUsecase(products, newTestSessions(t), []int64{adminID})
}

func TestAdmin_IsAdmin(t *testing.T) {
	uc := newAdminUC(t, new(mockProductRepo))
	assert.True(t, uc.IsAdmin(adminID))
	assert.False(t, uc.IsAdmin(42))
}

func TestAdmin_Begin_NonAdminForbidden(t *testing.T) {
	uc := newAdminUC(t, new(mockProductRepo))
	err := uc.Begin(context.Background(), 42, 42)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestAdmin_Remove(t *testing.T) {
	products := new(mockProductRepo)
	products.On("Deactivate", mock.Anything, uint(3)).Return(nil)

	uc := newAdminUC(t, products)
	require.NoError(t, uc.Remove(context.Background(), adminID, 3))
	products.AssertExpectations(t)
}

func TestAdmin_Remove_NonAdminForbidden(t *testing.T) {
	products := new(mockProductRepo)
	uc := newAdminUC(t, products)

	err := uc.Remove(context.Background(), 42, 3)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	products.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestAdmin_FullForm(t *testing.T) {
	products := new(mockProductRepo)
	products.On("Create", mock.Anything, mock.MatchedBy(func(p *entities.Product) bool {
		return p.Name == "Channel bot" &&
			p.Description == "Posts on schedule" &&
			p.Price == 4990 &&
			p.PhotoFileID == "file-1" &&
			p.IsActive
	})).Return(nil)

	uc := newAdminUC(t, products)
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, adminID, adminID))

	step, err := uc.HandleText(ctx, adminID, "Channel bot")
	require.NoError(t, err)
	assert.Equal(t, AdminStepDescription, step)

	step, err = uc.HandleText(ctx, adminID, "Posts on schedule")
	require.NoError(t, err)
	assert.Equal(t, AdminStepPrice, step)

	step, err = uc.HandleText(ctx, adminID, "49.90")
	require.NoError(t, err)
	assert.Equal(t, AdminStepPhoto, step)

	product, err := uc.HandlePhoto(ctx, adminID, "file-1")
	require.NoError(t, err)
	assert.Equal(t, "Channel bot", product.Name)
	products.AssertExpectations(t)

	// Form state is gone after completion.
	step, err = uc.Step(ctx, adminID)
	require.NoError(t, err)
	assert.Empty(t, step)
}

func TestAdmin_PriceValidation(t *testing.T) {
	uc := newAdminUC(t, new(mockProductRepo))
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, adminID, adminID))
	_, err := uc.HandleText(ctx, adminID, "Channel bot")
	require.NoError(t, err)
	_, err = uc.HandleText(ctx, adminID, "Posts on schedule")
	require.NoError(t, err)

	for _, bad := range []string{"free", "-5", "0", "1.999"} {
		step, err := uc.HandleText(ctx, adminID, bad)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput, "price %q", bad)
		assert.Equal(t, AdminStepPrice, step, "form stays on the price step")
	}

	step, err := uc.HandleText(ctx, adminID, "100")
	require.NoError(t, err)
	assert.Equal(t, AdminStepPhoto, step)
}

func TestAdmin_PhotoOutOfOrder(t *testing.T) {
	uc := newAdminUC(t, new(mockProductRepo))
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, adminID, adminID))
	_, err := uc.HandlePhoto(ctx, adminID, "file-1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestAdmin_Cancel(t *testing.T) {
	uc := newAdminUC(t, new(mockProductRepo))
	ctx := context.Background()

	require.NoError(t, uc.Begin(ctx, adminID, adminID))
	require.NoError(t, uc.Cancel(ctx, adminID))

	step, err := uc.Step(ctx, adminID)
	require.NoError(t, err)
	assert.Empty(t, step)

	_, err = uc.HandleText(ctx, adminID, "orphan input")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestParseMajorPrice(t *testing.T) {
	price, err := parseMajorPrice("49.90")
	require.NoError(t, err)
	assert.Equal(t, int64(4990), price)

	price, err = parseMajorPrice("100")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), price)
}
