package models

import (
	"time"

	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry with a raw (bruto) and a processed (beneficiado) price.
type Product struct {
	ID         string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code       string           `gorm:"type:varchar(40);index" json:"code"`
	Name       string           `gorm:"not null;index" json:"name"`
	Category   string           `gorm:"index" json:"category"`
	Unit       pricing.Unit     `gorm:"type:varchar(4);not null" json:"unit"`
	PriceBruto decimal.Decimal  `gorm:"type:decimal(18,6);not null;default:0" json:"price_bruto"`
	PriceBenef decimal.Decimal  `gorm:"type:decimal(18,6);not null;default:0" json:"price_benef"`
	Cost       *decimal.Decimal `gorm:"type:decimal(18,6)" json:"cost"`

	// Deprecated: Price mirrors PriceBruto for consumers that still read it.
	// It is overwritten on every save and never accepted as input.
	Price decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// BeforeSave keeps the legacy price column in step with price_bruto.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Price = p.PriceBruto
	return nil
}

// UnitPrice returns the price offered for this product.
func (p Product) UnitPrice(beneficiado bool) decimal.Decimal {
	return pricing.CatalogPrice(p.PriceBruto, p.PriceBenef, beneficiado)
}
