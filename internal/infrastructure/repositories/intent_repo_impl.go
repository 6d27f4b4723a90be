package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/infrastructure/models"
)

// IntentRepository implements payment intent data operations over the three
// per-provider tables.
type IntentRepository struct {
	db *gorm.DB
}

// NewIntentRepository creates a new intent repository
func NewIntentRepository(db *gorm.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

func intentTable(provider entities.PaymentProvider) (string, error) {
	switch provider {
	case entities.ProviderCard:
		return models.CardPaymentsTable, nil
	case entities.ProviderToken:
		return models.TokenPaymentsTable, nil
	case entities.ProviderCrypto:
		return models.CryptoPaymentsTable, nil
	}
	return "", domainerrors.ErrUnsupportedProvider
}

func openStatusStrings() []string {
	out := make([]string, 0, len(entities.OpenIntentStatuses))
	for _, s := range entities.OpenIntentStatuses {
		out = append(out, string(s))
	}
	return out
}

// Create persists a new intent record
func (r *IntentRepository) Create(ctx context.Context, intent *entities.PaymentIntent) error {
	table, err := intentTable(intent.Provider)
	if err != nil {
		return err
	}

	now := time.Now()
	m := &models.IntentRecord{
		ID:        intent.ID,
		Status:    string(intent.Status),
		BuyerID:   intent.BuyerID,
		ProductID: intent.ProductID,
		Amount:    intent.Amount,
		PayURL:    intent.PayURL.Ptr(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).Table(table).Create(m).Error; err != nil {
		return err
	}
	intent.CreatedAt = m.CreatedAt
	intent.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an intent by its provider-assigned id
func (r *IntentRepository) GetByID(ctx context.Context, provider entities.PaymentProvider, id string) (*entities.PaymentIntent, error) {
	table, err := intentTable(provider)
	if err != nil {
		return nil, err
	}

	var m models.IntentRecord
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrIntentNotFound
		}
		return nil, err
	}
	return r.toEntity(provider, &m), nil
}

// ListOpen returns all non-terminal intents for one provider, oldest first.
func (r *IntentRepository) ListOpen(ctx context.Context, provider entities.PaymentProvider) ([]*entities.PaymentIntent, error) {
	table, err := intentTable(provider)
	if err != nil {
		return nil, err
	}

	var ms []models.IntentRecord
	if err := r.db.WithContext(ctx).Table(table).
		Where("status IN ?", openStatusStrings()).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	intents := make([]*entities.PaymentIntent, 0, len(ms))
	for i := range ms {
		intents = append(intents, r.toEntity(provider, &ms[i]))
	}
	return intents, nil
}

// Finalize conditionally moves an intent into a terminal status. The guard on
// the current status makes the terminal transition at-most-once: concurrent
// callers racing on the same id see RowsAffected for exactly one of them.
func (r *IntentRepository) Finalize(ctx context.Context, provider entities.PaymentProvider, id string, to entities.IntentStatus) (bool, error) {
	table, err := intentTable(provider)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Table(table).
		Where("id = ? AND status IN ?", id, openStatusStrings()).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// No row moved: either the intent is already terminal or it never existed.
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, domainerrors.ErrIntentNotFound
	}
	return false, nil
}

func (r *IntentRepository) toEntity(provider entities.PaymentProvider, m *models.IntentRecord) *entities.PaymentIntent {
	return &entities.PaymentIntent{
		ID:        m.ID,
		Provider:  provider,
		Status:    entities.IntentStatus(m.Status),
		BuyerID:   m.BuyerID,
		ProductID: m.ProductID,
		Amount:    m.Amount,
		PayURL:    null.StringFromPtr(m.PayURL),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
