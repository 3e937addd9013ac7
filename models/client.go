package models

import (
	"time"

	"gorm.io/gorm"
)

// ClientType tells individuals (CPF) from companies (CNPJ).
type ClientType string

const (
	ClientIndividual ClientType = "PF"
	ClientCompany    ClientType = "PJ"
)

// Valid reports whether t is a known client type
func (t ClientType) Valid() bool {
	return t == ClientIndividual || t == ClientCompany
}

// Client represents a customer of the lumber yard
type Client struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string     `gorm:"not null;index" json:"name"`
	Document      string     `gorm:"type:varchar(32)" json:"document"` // CPF or CNPJ
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	Type          ClientType `gorm:"type:varchar(2);not null;default:'PF'" json:"type"`
	InternalNotes string     `gorm:"type:text" json:"internal_notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
