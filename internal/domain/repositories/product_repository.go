package repositories

import (
	"context"

	"store-bot.backend/internal/domain/entities"
)

// ProductRepository defines catalog data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id uint) (*entities.Product, error)
	ListActive(ctx context.Context) ([]*entities.Product, error)
	Deactivate(ctx context.Context, id uint) error
}

// UserRepository defines buyer account data operations
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	// Upsert creates the user if missing and reports whether it was created.
	Upsert(ctx context.Context, user *entities.User) (bool, error)
}
