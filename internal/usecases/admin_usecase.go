package usecases

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"store-bot.backend/internal/domain/entities"
	"store-bot.backend/internal/domain/errors"
	domainRepos "store-bot.backend/internal/domain/repositories"
	"store-bot.backend/pkg/logger"
	"store-bot.backend/pkg/redis"
)

// Form-filling steps, stored in the chat session between messages.
const (
	AdminStepName        = "name"
	AdminStepDescription = "description"
	AdminStepPrice       = "price"
	AdminStepPhoto       = "photo"
)

// AdminUsecase runs the linear product entry form: name, description, price
// in major units, photo. Only configured admin ids may use it; the partial
// draft lives in the session store until the photo finishes the form.
type AdminUsecase struct {
	productRepo domainRepos.ProductRepository
	sessions    *redis.SessionStore
	adminIDs    map[int64]struct{}
}

func NewAdminUsecase(productRepo domainRepos.ProductRepository, sessions *redis.SessionStore, adminIDs []int64) *AdminUsecase {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &AdminUsecase{productRepo: productRepo, sessions: sessions, adminIDs: ids}
}

// IsAdmin reports whether the user may manage the catalog.
func (uc *AdminUsecase) IsAdmin(userID int64) bool {
	_, ok := uc.adminIDs[userID]
	return ok
}

// Remove pulls a product from the catalog. Sold intents keep referencing it,
// so the row is deactivated rather than deleted.
func (uc *AdminUsecase) Remove(ctx context.Context, userID int64, productID uint) error {
	if !uc.IsAdmin(userID) {
		return errors.ErrForbidden
	}
	if err := uc.productRepo.Deactivate(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product removed",
		zap.Int64("admin_id", userID), zap.Uint("product_id", productID))
	return nil
}

// Begin starts a fresh product form for the chat.
func (uc *AdminUsecase) Begin(ctx context.Context, userID, chatID int64) error {
	if !uc.IsAdmin(userID) {
		return errors.ErrForbidden
	}
	state, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		state = &redis.SessionState{}
	}
	state.AdminStep = AdminStepName
	state.Draft = &redis.ProductDraft{}
	return uc.sessions.Save(ctx, chatID, state)
}

// Cancel abandons the form, keeping unrelated session state.
func (uc *AdminUsecase) Cancel(ctx context.Context, chatID int64) error {
	state, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		return err
	}
	state.AdminStep = ""
	state.Draft = nil
	return uc.sessions.Save(ctx, chatID, state)
}

// Step returns the step the chat's form is waiting on, empty when no form
// is in progress.
func (uc *AdminUsecase) Step(ctx context.Context, chatID int64) (string, error) {
	state, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	return state.AdminStep, nil
}

// HandleText feeds one text answer into the form and returns the step the
// form now waits on.
func (uc *AdminUsecase) HandleText(ctx context.Context, chatID int64, text string) (string, error) {
	state, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	if state.Draft == nil {
		return "", errors.ErrInvalidInput
	}

	switch state.AdminStep {
	case AdminStepName:
		state.Draft.Name = text
		state.AdminStep = AdminStepDescription
	case AdminStepDescription:
		state.Draft.Description = text
		state.AdminStep = AdminStepPrice
	case AdminStepPrice:
		price, err := parseMajorPrice(text)
		if err != nil {
			return AdminStepPrice, err
		}
		state.Draft.Price = price
		state.AdminStep = AdminStepPhoto
	default:
		return "", errors.ErrInvalidInput
	}

	if err := uc.sessions.Save(ctx, chatID, state); err != nil {
		return "", err
	}
	return state.AdminStep, nil
}

// HandlePhoto finishes the form: the photo is the last field, after it the
// product is inserted and the form state cleared.
func (uc *AdminUsecase) HandlePhoto(ctx context.Context, chatID int64, fileID string) (*entities.Product, error) {
	state, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if state.AdminStep != AdminStepPhoto || state.Draft == nil {
		return nil, errors.ErrInvalidInput
	}

	product := &entities.Product{
		Name:        state.Draft.Name,
		Description: state.Draft.Description,
		Price:       state.Draft.Price,
		PhotoFileID: fileID,
		IsActive:    true,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	state.AdminStep = ""
	state.Draft = nil
	if err := uc.sessions.Save(ctx, chatID, state); err != nil {
		logger.Warn(ctx, "form state cleanup failed",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}

	logger.Info(ctx, "product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int64("price", product.Price))
	return product, nil
}

// parseMajorPrice converts a major-unit price string ("49.90") into minor
// units. Fractions beyond two places and non-positive values are rejected.
func parseMajorPrice(text string) (int64, error) {
	major, err := decimal.NewFromString(text)
	if err != nil {
		return 0, errors.ErrInvalidInput
	}
	minor := major.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() || minor.Sign() <= 0 {
		return 0, errors.ErrInvalidInput
	}
	return minor.IntPart(), nil
}
