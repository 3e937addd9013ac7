package models

import (
	"time"

	"github.com/madeiras-ouro-preto/sales-api/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderType separates quotes from confirmed orders. A quote becomes an
// order by changing this field; it stays the same record.
type OrderType string

const (
	TypeQuote OrderType = "Orçamento"
	TypeOrder OrderType = "Pedido"
)

// Valid reports whether t is a known document type
func (t OrderType) Valid() bool {
	return t == TypeQuote || t == TypeOrder
}

type OrderStatus string

const (
	StatusDraft    OrderStatus = "Rascunho"
	StatusSent     OrderStatus = "Enviado"
	StatusApproved OrderStatus = "Aprovado"
	StatusRejected OrderStatus = "Recusado"
)

// Statuses lists the document statuses in workflow order.
var Statuses = []OrderStatus{StatusDraft, StatusSent, StatusApproved, StatusRejected}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is a quote or an order. Subtotal, TotalDiscount and Total are
// derived from Items by ApplyPricing and are never taken from input.
type Order struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClientID      string          `gorm:"type:varchar(36);index" json:"client_id"`
	ClientName    string          `gorm:"not null" json:"client_name"`
	SellerID      *string         `gorm:"type:varchar(36);index" json:"seller_id"`
	SellerName    string          `json:"seller_name"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'Rascunho'" json:"status"`
	Type          OrderType       `gorm:"type:varchar(20);not null;index" json:"type"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"subtotal"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"total_discount"`
	Total         decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"total"`
	InternalNotes string          `gorm:"type:text" json:"internal_notes"`
	CustomerNotes string          `gorm:"type:text" json:"customer_notes"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// HasSeller reports whether a seller is assigned
func (o Order) HasSeller() bool {
	return o.SellerID != nil && *o.SellerID != ""
}

// ValidateItems runs the pricing validation on every item and returns the
// position and error of the first bad one.
func (o Order) ValidateItems() (int, error) {
	for i, item := range o.Items {
		if err := pricing.Validate(item.Line()); err != nil {
			return i, err
		}
	}
	return -1, nil
}

// ApplyPricing recomputes every item total and the order aggregates.
func (o *Order) ApplyPricing() {
	lines := make([]pricing.Line, len(o.Items))
	for i := range o.Items {
		lines[i] = o.Items[i].Line()
		o.Items[i].Total = pricing.Calculate(lines[i]).Total
	}

	totals := pricing.Summarize(lines)
	o.Subtotal = totals.Subtotal
	o.TotalDiscount = totals.TotalDiscount
	o.Total = totals.Total
}

// OrderItem is a snapshot of what was sold on one line: description, price
// and unit are copied from the catalog and do not follow later price changes.
type OrderItem struct {
	ID            string               `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID       string               `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Position      int                  `gorm:"not null;default:0" json:"position"`
	ProductID     *string              `gorm:"type:varchar(36);index" json:"product_id"`
	Description   string               `gorm:"not null" json:"description"`
	Quantity      decimal.Decimal      `gorm:"type:decimal(18,6);not null" json:"quantity"`
	UnitPrice     decimal.Decimal      `gorm:"type:decimal(18,6);not null" json:"unit_price"`
	Unit          pricing.Unit         `gorm:"type:varchar(4);not null" json:"unit"`
	DiscountType  pricing.DiscountType `gorm:"type:varchar(12);not null;default:'percentage'" json:"discount_type"`
	DiscountValue decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:0" json:"discount_value"`
	LengthM       *decimal.Decimal     `gorm:"column:length_m;type:decimal(18,6)" json:"length_m"`
	WidthCM       *decimal.Decimal     `gorm:"column:width_cm;type:decimal(18,6)" json:"width_cm"`
	Beneficiado   bool                 `gorm:"not null" json:"is_beneficiado"`
	Total         decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:0" json:"total"`

	// PriceFromCatalog asks the save to take UnitPrice from the referenced
	// product. Stored items never carry it, so re-saving keeps their price.
	PriceFromCatalog bool `gorm:"-" json:"-"`
}

// NeedsCatalog reports whether the item is missing data only the catalog can supply.
func (i OrderItem) NeedsCatalog() bool {
	return i.PriceFromCatalog || i.Description == "" || i.Unit == ""
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Line converts the item into pricing input.
func (i OrderItem) Line() pricing.Line {
	return pricing.Line{
		Quantity:      i.Quantity,
		UnitPrice:     i.UnitPrice,
		Unit:          i.Unit,
		LengthM:       i.LengthM,
		WidthCM:       i.WidthCM,
		DiscountType:  i.DiscountType,
		DiscountValue: i.DiscountValue,
	}
}

// Pricing returns the base, discount and total of the item.
func (i OrderItem) Pricing() pricing.Breakdown {
	return pricing.Calculate(i.Line())
}
