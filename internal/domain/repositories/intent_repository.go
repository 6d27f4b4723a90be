package repositories

import (
	"context"

	"store-bot.backend/internal/domain/entities"
)

// IntentRepository defines payment intent data operations. Records are keyed
// by (provider, provider-assigned id) and live in one table per provider.
type IntentRepository interface {
	Create(ctx context.Context, intent *entities.PaymentIntent) error
	GetByID(ctx context.Context, provider entities.PaymentProvider, id string) (*entities.PaymentIntent, error)
	// ListOpen returns all non-terminal intents for one provider.
	ListOpen(ctx context.Context, provider entities.PaymentProvider) ([]*entities.PaymentIntent, error)
	// Finalize conditionally moves an intent into a terminal status. It
	// reports whether the write took effect: false means another caller
	// already finalized the intent. Returns ErrIntentNotFound when no row
	// with the id exists at all.
	Finalize(ctx context.Context, provider entities.PaymentProvider, id string, to entities.IntentStatus) (bool, error)
}
