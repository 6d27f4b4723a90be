package usecases

import (
	"context"

	"go.uber.org/zap"
	"store-bot.backend/internal/domain/entities"
	"store-bot.backend/internal/domain/errors"
	domainRepos "store-bot.backend/internal/domain/repositories"
	"store-bot.backend/pkg/logger"
	"store-bot.backend/pkg/redis"
)

// CatalogPage is one product of the active catalog plus where it sits.
type CatalogPage struct {
	Product *entities.Product
	Index   int
	Total   int
}

// CatalogUsecase serves catalog browsing: the list of active products and a
// per-chat scroll position held in the session store. Navigation wraps
// around at both ends.
type CatalogUsecase struct {
	productRepo domainRepos.ProductRepository
	userRepo    domainRepos.UserRepository
	sessions    *redis.SessionStore
}

func NewCatalogUsecase(
	productRepo domainRepos.ProductRepository,
	userRepo domainRepos.UserRepository,
	sessions *redis.SessionStore,
) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo: productRepo,
		userRepo:    userRepo,
		sessions:    sessions,
	}
}

// RegisterBuyer upserts the buyer account on first contact.
func (uc *CatalogUsecase) RegisterBuyer(ctx context.Context, user *entities.User) error {
	created, err := uc.userRepo.Upsert(ctx, user)
	if err != nil {
		return err
	}
	if created {
		logger.Info(ctx, "buyer registered",
			zap.Int64("buyer_id", user.ID),
			zap.String("username", user.Username))
	}
	return nil
}

// CurrentPage returns the product at the chat's saved scroll position,
// clamped into range when the catalog shrank since the position was saved.
func (uc *CatalogUsecase) CurrentPage(ctx context.Context, chatID int64) (*CatalogPage, error) {
	return uc.page(ctx, chatID, 0)
}

// NextPage advances the chat's scroll position by one, wrapping to the first
// product past the end.
func (uc *CatalogUsecase) NextPage(ctx context.Context, chatID int64) (*CatalogPage, error) {
	return uc.page(ctx, chatID, +1)
}

// PrevPage moves the chat's scroll position back by one, wrapping to the
// last product before the start.
func (uc *CatalogUsecase) PrevPage(ctx context.Context, chatID int64) (*CatalogPage, error) {
	return uc.page(ctx, chatID, -1)
}

func (uc *CatalogUsecase) page(ctx context.Context, chatID int64, step int) (*CatalogPage, error) {
	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.ErrProductNotFound
	}

	state, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		// Session store trouble degrades to first-page browsing.
		logger.Warn(ctx, "session load failed, starting from first product",
			zap.Int64("chat_id", chatID), zap.Error(err))
		state = &redis.SessionState{}
	}

	index := (state.CatalogIndex + step) % len(products)
	if index < 0 {
		index += len(products)
	}

	state.CatalogIndex = index
	if err := uc.sessions.Save(ctx, chatID, state); err != nil {
		logger.Warn(ctx, "session save failed",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}

	return &CatalogPage{Product: products[index], Index: index, Total: len(products)}, nil
}
