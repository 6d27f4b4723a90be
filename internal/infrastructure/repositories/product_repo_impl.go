package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/infrastructure/models"
)

// ProductRepository implements catalog data operations
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *entities.Product) error {
	m := &models.Product{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		PhotoFileID: product.PhotoFileID,
		IsActive:    true,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	product.ID = m.ID
	product.IsActive = m.IsActive
	product.CreatedAt = m.CreatedAt
	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*entities.Product, error) {
	var m models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrProductNotFound
		}
		return nil, err
	}
	return toProductEntity(&m), nil
}

// ListActive returns all active products in insertion order.
func (r *ProductRepository) ListActive(ctx context.Context) ([]*entities.Product, error) {
	var ms []models.Product
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	products := make([]*entities.Product, 0, len(ms))
	for i := range ms {
		products = append(products, toProductEntity(&ms[i]))
	}
	return products, nil
}

// Deactivate hides a product from the catalog. Intents referencing it are
// kept as audit trail.
func (r *ProductRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProductNotFound
	}
	return nil
}

func toProductEntity(m *models.Product) *entities.Product {
	return &entities.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		PhotoFileID: m.PhotoFileID,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}
