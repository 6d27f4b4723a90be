package providers

import (
	"context"

	"store-bot.backend/internal/domain/entities"
)

// RemoteStatus is the normalized view of a provider's payment status.
type RemoteStatus string

const (
	RemotePending   RemoteStatus = "pending"
	RemoteActive    RemoteStatus = "active"
	RemoteSucceeded RemoteStatus = "succeeded"
	RemoteCanceled  RemoteStatus = "canceled"
	RemoteExpired   RemoteStatus = "expired"
	RemoteFailed    RemoteStatus = "failed"
	// RemoteNotFound means the provider does not know the id. Distinct from
	// pending so the caller can tolerate provider-side replication lag.
	RemoteNotFound RemoteStatus = "not_found"
	// RemoteUnknown covers provider statuses outside the recognized
	// vocabulary. Treated as still pending downstream.
	RemoteUnknown RemoteStatus = "unknown"
)

// Handle is what a provider returns when an intent is created with it.
type Handle struct {
	ID     string // provider-assigned identifier
	Amount string // provider-native unit
	Status entities.IntentStatus
	PayURL string // buyer-facing action URL, empty for in-platform invoices
}

// Adapter hides one provider's creation and status protocols behind a
// provider-agnostic shape.
type Adapter interface {
	Provider() entities.PaymentProvider
	CreateIntent(ctx context.Context, product *entities.Product, buyerID int64) (*Handle, error)
	QueryStatus(ctx context.Context, id string) (RemoteStatus, error)
}
