package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/infrastructure/models"
)

// UserRepository implements buyer account data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID gets a user by platform id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// Upsert creates the user if missing; existing rows are left untouched.
// Reports whether a new row was inserted.
func (r *UserRepository) Upsert(ctx context.Context, user *entities.User) (bool, error) {
	m := &models.User{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsActive:  true,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:        m.ID,
		Username:  m.Username,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}
