package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/internal/pricing"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Calculator implements the coupon discount math the pricing engine depends
// on. Percentage discounts are computed against the subtotal the coupon's
// price base selects; fixed discounts are taken at face value.
type Calculator struct{}

// NewCalculator builds the coupon calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ItemsDiscount computes the items-scope discount for the coupon.
func (c *Calculator) ItemsDiscount(coupon *models.Coupon, lines []pricing.Line) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	switch coupon.DiscountType {
	case enums.CouponDiscountFixed:
		return coupon.DiscountValue

	case enums.CouponDiscountPercent:
		subtotal := decimal.Zero
		for _, line := range lines {
			if coupon.PriceBase == enums.CouponPriceBaseCatalog {
				subtotal = subtotal.Add(line.BaseTotal())
				continue
			}
			subtotal = subtotal.Add(line.Total())
		}
		return subtotal.Mul(coupon.DiscountValue).Div(hundred).Round(2)
	}

	return decimal.Zero
}

// DeliveryDiscount computes the delivery-scope discount, capped at the
// delivery amount. Percentage discounts apply against the discount base the
// caller computed for the items scope.
func (c *Calculator) DeliveryDiscount(coupon *models.Coupon, baseAmount, deliveryAmount decimal.Decimal) decimal.Decimal {
	if coupon == nil || coupon.DeliveryDiscountType == nil || coupon.DeliveryDiscountValue == nil {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch *coupon.DeliveryDiscountType {
	case enums.CouponDiscountFixed:
		discount = *coupon.DeliveryDiscountValue
	case enums.CouponDiscountPercent:
		discount = baseAmount.Mul(*coupon.DeliveryDiscountValue).Div(hundred).Round(2)
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(deliveryAmount) {
		return deliveryAmount
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

var _ pricing.Calculator = (*Calculator)(nil)

// ValidateArgs carries the context a coupon is validated against.
type ValidateArgs struct {
	UserID      *uuid.UUID
	ItemsAmount decimal.Decimal
	Now         time.Time
}
