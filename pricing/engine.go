// Package pricing computes line item and order totals for lumber quotes.
//
// Lumber is cut in half-meter steps, so every dimension is rounded up to the
// next 0.5 m before it multiplies the unit price. All arithmetic is done on
// shopspring decimals; nothing here touches the database.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is a catalog unit of measure.
type Unit string

const (
	UnitSquareMeter Unit = "m2"
	UnitCubicMeter  Unit = "m3"
	UnitMeter       Unit = "m"
	UnitCount       Unit = "un"
	UnitLinearMeter Unit = "ML"
	UnitPiece       Unit = "Pç"
	UnitKilogram    Unit = "Kg"
	UnitSet         Unit = "JG"
)

// Units lists every unit accepted by the catalog, in display order.
var Units = []Unit{
	UnitSquareMeter, UnitCubicMeter, UnitMeter, UnitCount,
	UnitLinearMeter, UnitPiece, UnitKilogram, UnitSet,
}

// Valid reports whether u is one of the catalog units.
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// IsArea reports whether the unit is priced by length x width.
func (u Unit) IsArea() bool { return u == UnitSquareMeter }

// IsLinear reports whether the unit is priced by length only.
func (u Unit) IsLinear() bool { return u == UnitLinearMeter }

// DiscountType selects how DiscountValue is applied to the base amount.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var (
	ErrMissingLength       = errors.New("linear-length items require a length greater than zero")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrNegativePrice       = errors.New("unit price cannot be negative")
	ErrNegativeDiscount    = errors.New("discount value cannot be negative")
	ErrInvalidUnit         = errors.New("unknown unit of measure")
	ErrInvalidDiscountType = errors.New("discount type must be percentage or fixed")
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Line holds the raw inputs of one line item.
// LengthM is in meters, WidthCM in centimeters; nil means the dimension was not given.
type Line struct {
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Unit          Unit
	LengthM       *decimal.Decimal
	WidthCM       *decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}

// Breakdown is the priced result of a Line.
type Breakdown struct {
	Base     decimal.Decimal `json:"base"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Totals are the order level aggregates.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Total         decimal.Decimal `json:"total"`
}

// CeilToHalf rounds v up to the next multiple of 0.5. Non-positive input yields zero.
func CeilToHalf(v decimal.Decimal) decimal.Decimal {
	if !v.IsPositive() {
		return decimal.Zero
	}
	return v.Mul(two).Ceil().Div(two)
}

// Validate rejects a line before it enters an order. Calculate never fails,
// so anything that must stop an entry has to be caught here.
func Validate(l Line) error {
	if !l.Unit.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidUnit, l.Unit)
	}
	if !l.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	switch l.DiscountType {
	case "", DiscountPercentage, DiscountFixed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDiscountType, l.DiscountType)
	}
	if l.DiscountValue.IsNegative() {
		return ErrNegativeDiscount
	}
	if l.Unit.IsLinear() && (l.LengthM == nil || !l.LengthM.IsPositive()) {
		return ErrMissingLength
	}
	return nil
}

// BaseAmount is the pre-discount value of the line.
func BaseAmount(l Line) decimal.Decimal {
	perUnit := l.Quantity.Mul(l.UnitPrice)

	switch {
	case l.Unit.IsLinear():
		return perUnit.Mul(CeilToHalf(deref(l.LengthM)))
	case l.Unit.IsArea():
		width := deref(l.WidthCM)
		if !width.IsPositive() {
			// sold by count
			return perUnit
		}
		return perUnit.
			Mul(CeilToHalf(deref(l.LengthM))).
			Mul(CeilToHalf(width.Div(hundred)))
	default:
		return perUnit
	}
}

// DiscountAmount applies the line discount to base.
// Fixed discounts are not clamped to base; Calculate floors the total instead.
func DiscountAmount(l Line, base decimal.Decimal) decimal.Decimal {
	if !l.DiscountValue.IsPositive() {
		return decimal.Zero
	}
	switch l.DiscountType {
	case DiscountPercentage:
		return base.Mul(l.DiscountValue).Div(hundred)
	case DiscountFixed:
		return l.DiscountValue
	default:
		return decimal.Zero
	}
}

// Calculate prices one line.
func Calculate(l Line) Breakdown {
	base := BaseAmount(l)
	discount := DiscountAmount(l, base)
	return Breakdown{
		Base:     base,
		Discount: discount,
		Total:    decimal.Max(decimal.Zero, base.Sub(discount)),
	}
}

// Summarize recomputes the order aggregates from the full line list.
//
// Total is Subtotal minus TotalDiscount and is not floored. A fixed discount
// larger than its line base zeroes that line's total but still counts in full
// here, so Total can be lower than the sum of item totals and even negative.
// Anything that sums order totals (dashboard revenue, daily series) inherits
// that negative value.
func Summarize(lines []Line) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, l := range lines {
		b := Calculate(l)
		subtotal = subtotal.Add(b.Base)
		discount = discount.Add(b.Discount)
	}
	return Totals{
		Subtotal:      subtotal,
		TotalDiscount: discount,
		Total:         subtotal.Sub(discount),
	}
}

// CatalogPrice picks the unit price offered for a product: the processed
// price when beneficiado is requested and set, the raw price otherwise.
func CatalogPrice(priceBruto, priceBenef decimal.Decimal, beneficiado bool) decimal.Decimal {
	if beneficiado && priceBenef.IsPositive() {
		return priceBenef
	}
	return priceBruto
}

func deref(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
