package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// Line is one priced cart line fed into amount computation. BasePrice is the
// catalog price before markdown; it equals Price when the offer is not on sale.
type Line struct {
	Price     decimal.Decimal
	BasePrice decimal.Decimal
	Quantity  int
}

// Total is the line total at sale price.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// BaseTotal is the line total at catalog base price.
func (l Line) BaseTotal() decimal.Decimal {
	return l.BasePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Params carries the optional inputs of ComputeAmounts.
type Params struct {
	DeliveryAmount *decimal.Decimal
	Coupon         *models.Coupon
	Bonuses        *decimal.Decimal
}

// Amounts is the checkout money breakdown. Discount folds the items and
// delivery coupon portions; Coupon is the items-only portion.
type Amounts struct {
	Items    decimal.Decimal
	Delivery decimal.Decimal
	Discount decimal.Decimal
	Coupon   decimal.Decimal
	Total    decimal.Decimal
}

// Calculator computes coupon discounts. The delivery discount is capped at
// the delivery amount by the implementation.
type Calculator interface {
	ItemsDiscount(coupon *models.Coupon, lines []Line) decimal.Decimal
	DeliveryDiscount(coupon *models.Coupon, baseAmount, deliveryAmount decimal.Decimal) decimal.Decimal
}

// Engine derives order money amounts at creation time and keeps persisted
// totals consistent afterwards.
type Engine interface {
	ComputeAmounts(lines []Line, itemsAmount decimal.Decimal, params Params) Amounts
	UpdateTotals(order *models.Order, items []models.OrderItem)
}

type engine struct {
	calc Calculator
}

// NewEngine builds the pricing engine.
func NewEngine(calc Calculator) (Engine, error) {
	if calc == nil {
		return nil, fmt.Errorf("coupon calculator required")
	}
	return &engine{calc: calc}, nil
}

// ComputeAmounts prices a checkout before persistence. Pure aside from the
// calculator calls.
func (e *engine) ComputeAmounts(lines []Line, itemsAmount decimal.Decimal, params Params) Amounts {
	delivery := decimal.Zero
	if params.DeliveryAmount != nil {
		delivery = *params.DeliveryAmount
	}
	bonuses := decimal.Zero
	if params.Bonuses != nil {
		bonuses = *params.Bonuses
	}

	discount := decimal.Zero
	couponAmount := decimal.Zero
	deliveryDiscount := decimal.Zero

	if params.Coupon != nil && itemsAmount.IsPositive() {
		coupon := params.Coupon

		// Percentage coupons keyed off catalog base price are discounted
		// against the pre-markdown subtotal, not the sale subtotal.
		discountBase := itemsAmount
		if coupon.DiscountType == enums.CouponDiscountPercent &&
			coupon.PriceBase == enums.CouponPriceBaseCatalog {
			discountBase = decimal.Zero
			for _, line := range lines {
				discountBase = discountBase.Add(line.BaseTotal())
			}
		}

		discount = e.calc.ItemsDiscount(coupon, lines)
		if discount.GreaterThan(discountBase) {
			discount = discountBase
		}

		if delivery.IsPositive() {
			deliveryDiscount = e.calc.DeliveryDiscount(coupon, discountBase, delivery)
			delivery = delivery.Sub(deliveryDiscount)
		}

		couponAmount = discount
	}

	total := itemsAmount.Add(delivery).Sub(discount).Sub(bonuses)

	return Amounts{
		Items:    itemsAmount,
		Delivery: delivery,
		Discount: discount.Add(deliveryDiscount),
		Coupon:   couponAmount,
		Total:    total,
	}
}

// UpdateTotals recomputes persisted totals from the current line items. It is
// the single source of truth after item or coupon mutation and must be re-run
// rather than hand-patched. The order must carry a loaded payment type.
func (e *engine) UpdateTotals(order *models.Order, items []models.OrderItem) {
	if order.PaymentType == nil {
		panic(fmt.Sprintf("pricing: order %s has no payment type loaded", order.OrderNumber))
	}

	itemsAmount := decimal.Zero
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		itemsAmount = itemsAmount.Add(item.TotalAmount())
		lines = append(lines, LineFromItem(item))
	}

	couponAmount := decimal.Zero
	if order.Coupon != nil {
		couponAmount = e.calc.ItemsDiscount(order.Coupon, lines)
		if couponAmount.GreaterThan(itemsAmount) {
			couponAmount = itemsAmount
		}
	}

	commission := itemsAmount.
		Mul(order.PaymentType.CommissionPercent).
		Div(decimal.NewFromInt(100)).
		Round(2)

	delivery := decimal.Zero
	if order.DeliveryAmount != nil {
		delivery = *order.DeliveryAmount
	}
	bonus := decimal.Zero
	if order.BonusAmount != nil {
		bonus = *order.BonusAmount
	}

	order.ItemsAmount = itemsAmount
	order.CouponAmount = couponAmount
	order.DiscountAmount = couponAmount
	order.Commission = commission
	order.TotalAmount = itemsAmount.Add(commission).Add(delivery).Sub(couponAmount).Sub(bonus)
}

// LineFromItem converts a persisted order item into a pricing line, falling
// back to the sale price when the offer snapshot carries no base price.
func LineFromItem(item models.OrderItem) Line {
	base := item.Price
	if item.Offer != nil && item.Offer.BasePrice.IsPositive() {
		base = item.Offer.BasePrice
	}
	return Line{Price: item.Price, BasePrice: base, Quantity: item.Quantity}
}
