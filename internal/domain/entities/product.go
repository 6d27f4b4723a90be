package entities

import "time"

// Product is a catalog item. Read-only from the payment core's perspective.
type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // minor currency units
	PhotoFileID string    `json:"photoFileId"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
