package models

import (
	"time"
)

// IntentRecord is the persisted shape shared by the three provider tables
// (card_payments, token_payments, crypto_payments). The repository selects
// the table by provider; the primary key is the provider-assigned id.
type IntentRecord struct {
	ID        string  `gorm:"type:varchar(255);primaryKey"`
	Status    string  `gorm:"type:varchar(20);not null;index"`
	BuyerID   int64   `gorm:"not null;index"`
	ProductID uint    `gorm:"not null"`
	Amount    string  `gorm:"type:varchar(100);not null"`
	PayURL    *string `gorm:"type:varchar(512)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	CardPaymentsTable   = "card_payments"
	TokenPaymentsTable  = "token_payments"
	CryptoPaymentsTable = "crypto_payments"
)
