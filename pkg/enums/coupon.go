package enums

import "fmt"

// CouponDiscountType selects how a coupon's discount is expressed.
type CouponDiscountType string

const (
	CouponDiscountPercent CouponDiscountType = "percent"
	CouponDiscountFixed   CouponDiscountType = "fixed"
)

// IsValid reports whether the value is a known CouponDiscountType.
func (c CouponDiscountType) IsValid() bool {
	return c == CouponDiscountPercent || c == CouponDiscountFixed
}

// ParseCouponDiscountType converts raw input into a CouponDiscountType.
func ParseCouponDiscountType(value string) (CouponDiscountType, error) {
	switch CouponDiscountType(value) {
	case CouponDiscountPercent:
		return CouponDiscountPercent, nil
	case CouponDiscountFixed:
		return CouponDiscountFixed, nil
	default:
		return "", fmt.Errorf("invalid coupon discount type %q", value)
	}
}

// CouponPriceBase selects which unit price a percentage coupon is computed
// against: the sale price the buyer actually pays, or the catalog base price
// before any sale markdown.
type CouponPriceBase string

const (
	CouponPriceBaseSale    CouponPriceBase = "sale_price"
	CouponPriceBaseCatalog CouponPriceBase = "base_price"
)

// IsValid reports whether the value is a known CouponPriceBase.
func (c CouponPriceBase) IsValid() bool {
	return c == CouponPriceBaseSale || c == CouponPriceBaseCatalog
}
