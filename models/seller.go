package models

import (
	"time"

	"gorm.io/gorm"
)

// Seller is an entry of the sales directory. Orders keep pointing at a
// seller after it is deactivated, so reports can still name it.
type Seller struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	WhatsApp  string    `gorm:"column:whatsapp" json:"whatsapp"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Seller model
func (Seller) TableName() string {
	return "sellers"
}

func (s *Seller) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
