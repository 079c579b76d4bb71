package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

type fakeCalculator struct {
	itemsDiscount    decimal.Decimal
	deliveryDiscount decimal.Decimal

	itemsCalls    int
	deliveryCalls int
	lastBase      decimal.Decimal
	lastDelivery  decimal.Decimal
}

func (f *fakeCalculator) ItemsDiscount(_ *models.Coupon, _ []Line) decimal.Decimal {
	f.itemsCalls++
	return f.itemsDiscount
}

func (f *fakeCalculator) DeliveryDiscount(_ *models.Coupon, base, delivery decimal.Decimal) decimal.Decimal {
	f.deliveryCalls++
	f.lastBase = base
	f.lastDelivery = delivery
	if f.deliveryDiscount.GreaterThan(delivery) {
		return delivery
	}
	return f.deliveryDiscount
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func newTestEngine(t *testing.T, calc Calculator) Engine {
	t.Helper()
	eng, err := NewEngine(calc)
	require.NoError(t, err)
	return eng
}

func TestNewEngineRequiresCalculator(t *testing.T) {
	_, err := NewEngine(nil)
	require.Error(t, err)
}

func TestComputeAmountsWithoutCoupon(t *testing.T) {
	calc := &fakeCalculator{}
	eng := newTestEngine(t, calc)

	amounts := eng.ComputeAmounts(nil, dec("1000.00"), Params{DeliveryAmount: decPtr("200.00")})

	require.True(t, amounts.Discount.IsZero())
	require.True(t, amounts.Coupon.IsZero())
	require.True(t, amounts.Total.Equal(dec("1200.00")), "total %s", amounts.Total)
	require.Zero(t, calc.itemsCalls)
}

func TestComputeAmountsPercentCoupon(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("100.00")}
	eng := newTestEngine(t, calc)

	coupon := &models.Coupon{DiscountType: enums.CouponDiscountPercent, DiscountValue: dec("10"), PriceBase: enums.CouponPriceBaseSale}
	amounts := eng.ComputeAmounts(nil, dec("1000.00"), Params{
		DeliveryAmount: decPtr("200.00"),
		Coupon:         coupon,
	})

	require.True(t, amounts.Coupon.Equal(dec("100.00")))
	require.True(t, amounts.Total.Equal(dec("1100.00")), "total %s", amounts.Total)
}

func TestComputeAmountsDeliveryDiscountCapped(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("50.00"), deliveryDiscount: dec("200.00")}
	eng := newTestEngine(t, calc)

	coupon := &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("50")}
	amounts := eng.ComputeAmounts(nil, dec("1000.00"), Params{
		DeliveryAmount: decPtr("150.00"),
		Coupon:         coupon,
	})

	require.True(t, amounts.Delivery.IsZero(), "delivery %s", amounts.Delivery)
	// Folded discount carries both the items and the capped delivery portions.
	require.True(t, amounts.Discount.Equal(dec("200.00")), "discount %s", amounts.Discount)
	require.True(t, amounts.Coupon.Equal(dec("50.00")))
	require.True(t, amounts.Total.Equal(dec("950.00")), "total %s", amounts.Total)
}

func TestComputeAmountsBasePriceCoupon(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("120.00"), deliveryDiscount: dec("10.00")}
	eng := newTestEngine(t, calc)

	lines := []Line{
		{Price: dec("400.00"), BasePrice: dec("600.00"), Quantity: 2},
	}
	coupon := &models.Coupon{DiscountType: enums.CouponDiscountPercent, DiscountValue: dec("10"), PriceBase: enums.CouponPriceBaseCatalog}
	amounts := eng.ComputeAmounts(lines, dec("800.00"), Params{
		DeliveryAmount: decPtr("100.00"),
		Coupon:         coupon,
	})

	// The delivery discount is computed against the base-price subtotal,
	// while the grand total still starts from the sale subtotal.
	require.True(t, calc.lastBase.Equal(dec("1200.00")), "base %s", calc.lastBase)
	require.True(t, amounts.Items.Equal(dec("800.00")))
	require.True(t, amounts.Total.Equal(dec("770.00")), "total %s", amounts.Total)
}

func TestComputeAmountsDiscountClampedToBase(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("5000.00")}
	eng := newTestEngine(t, calc)

	coupon := &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("5000")}
	amounts := eng.ComputeAmounts(nil, dec("1000.00"), Params{Coupon: coupon})

	require.True(t, amounts.Coupon.Equal(dec("1000.00")))
	require.True(t, amounts.Total.IsZero(), "total %s", amounts.Total)
}

func TestComputeAmountsBonuses(t *testing.T) {
	calc := &fakeCalculator{}
	eng := newTestEngine(t, calc)

	amounts := eng.ComputeAmounts(nil, dec("1000.00"), Params{
		DeliveryAmount: decPtr("200.00"),
		Bonuses:        decPtr("300.00"),
	})

	require.True(t, amounts.Total.Equal(dec("900.00")), "total %s", amounts.Total)
}

func TestComputeAmountsZeroItemsSkipsCoupon(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("100.00")}
	eng := newTestEngine(t, calc)

	coupon := &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("100")}
	amounts := eng.ComputeAmounts(nil, decimal.Zero, Params{Coupon: coupon})

	require.Zero(t, calc.itemsCalls)
	require.True(t, amounts.Discount.IsZero())
}

func TestUpdateTotalsIdentity(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("150.00")}
	eng := newTestEngine(t, calc)

	order := &models.Order{
		PaymentType:    &models.PaymentType{CommissionPercent: dec("2.5")},
		Coupon:         &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("150")},
		DeliveryAmount: decPtr("200.00"),
		BonusAmount:    decPtr("50.00"),
	}
	items := []models.OrderItem{
		{Price: dec("400.00"), Quantity: 2},
		{Price: dec("200.00"), Quantity: 1},
	}

	eng.UpdateTotals(order, items)

	require.True(t, order.ItemsAmount.Equal(dec("1000.00")))
	require.True(t, order.CouponAmount.Equal(dec("150.00")))
	require.True(t, order.DiscountAmount.Equal(order.CouponAmount))
	require.True(t, order.Commission.Equal(dec("25.00")), "commission %s", order.Commission)

	identity := order.ItemsAmount.
		Add(order.Commission).
		Add(*order.DeliveryAmount).
		Sub(order.DiscountAmount).
		Sub(*order.BonusAmount)
	require.True(t, order.TotalAmount.Equal(identity), "total %s want %s", order.TotalAmount, identity)
	require.True(t, order.TotalAmount.Equal(dec("1025.00")))
}

func TestUpdateTotalsCouponBoundedByItems(t *testing.T) {
	calc := &fakeCalculator{itemsDiscount: dec("9999.00")}
	eng := newTestEngine(t, calc)

	order := &models.Order{
		PaymentType: &models.PaymentType{CommissionPercent: decimal.Zero},
		Coupon:      &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("9999")},
	}
	items := []models.OrderItem{{Price: dec("100.00"), Quantity: 3}}

	eng.UpdateTotals(order, items)

	require.True(t, order.CouponAmount.Equal(dec("300.00")))
	require.True(t, order.TotalAmount.IsZero())
}

func TestUpdateTotalsSkipsNonPositiveQuantity(t *testing.T) {
	calc := &fakeCalculator{}
	eng := newTestEngine(t, calc)

	order := &models.Order{PaymentType: &models.PaymentType{CommissionPercent: decimal.Zero}}
	items := []models.OrderItem{
		{Price: dec("100.00"), Quantity: 2},
		{Price: dec("500.00"), Quantity: 0},
	}

	eng.UpdateTotals(order, items)

	require.True(t, order.ItemsAmount.Equal(dec("200.00")))
}

func TestUpdateTotalsPanicsWithoutPaymentType(t *testing.T) {
	calc := &fakeCalculator{}
	eng := newTestEngine(t, calc)

	require.Panics(t, func() {
		eng.UpdateTotals(&models.Order{OrderNumber: "123"}, nil)
	})
}
