package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// PaymentProvider identifies which external provider an intent belongs to
type PaymentProvider string

const (
	ProviderCard   PaymentProvider = "CARD"
	ProviderToken  PaymentProvider = "TOKEN"
	ProviderCrypto PaymentProvider = "CRYPTO"
)

// IntentStatus represents the lifecycle state of a payment intent
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "PENDING"
	IntentStatusActive    IntentStatus = "ACTIVE"
	IntentStatusSucceeded IntentStatus = "SUCCEEDED"
	IntentStatusCanceled  IntentStatus = "CANCELED"
	IntentStatusExpired   IntentStatus = "EXPIRED"
	IntentStatusFailed    IntentStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible from s.
func (s IntentStatus) IsTerminal() bool {
	switch s {
	case IntentStatusSucceeded, IntentStatusCanceled, IntentStatusExpired, IntentStatusFailed:
		return true
	}
	return false
}

// OpenIntentStatuses are the statuses an intent can still transition out of.
var OpenIntentStatuses = []IntentStatus{IntentStatusPending, IntentStatusActive}

// PaymentIntent represents a created-but-not-yet-confirmed payment request.
// ID is assigned by the provider (gateway payment id, platform payload UUID,
// or invoice id) and never changes after creation.
type PaymentIntent struct {
	ID        string          `json:"id"`
	Provider  PaymentProvider `json:"provider"`
	Status    IntentStatus    `json:"status"`
	BuyerID   int64           `json:"buyerId"`
	ProductID uint            `json:"productId"`
	Amount    string          `json:"amount"` // provider-native unit
	PayURL    null.String     `json:"payUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
