package models

import "time"

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Price       int64  `gorm:"not null"` // minor currency units
	PhotoFileID string `gorm:"type:varchar(255);not null"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
}

type User struct {
	ID        int64  `gorm:"primaryKey"`
	Username  string `gorm:"type:varchar(100)"`
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
}
