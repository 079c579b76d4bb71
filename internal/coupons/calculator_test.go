package coupons

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/milnali/shop-backend/internal/pricing"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func discountTypePtr(t enums.CouponDiscountType) *enums.CouponDiscountType {
	return &t
}

func TestItemsDiscountPercentSalePrice(t *testing.T) {
	calc := NewCalculator()
	coupon := &models.Coupon{
		DiscountType:  enums.CouponDiscountPercent,
		DiscountValue: dec("10"),
		PriceBase:     enums.CouponPriceBaseSale,
	}
	lines := []pricing.Line{
		{Price: dec("400.00"), BasePrice: dec("500.00"), Quantity: 2},
		{Price: dec("200.00"), BasePrice: dec("200.00"), Quantity: 1},
	}

	got := calc.ItemsDiscount(coupon, lines)
	require.True(t, got.Equal(dec("100.00")), "discount %s", got)
}

func TestItemsDiscountPercentBasePrice(t *testing.T) {
	calc := NewCalculator()
	coupon := &models.Coupon{
		DiscountType:  enums.CouponDiscountPercent,
		DiscountValue: dec("10"),
		PriceBase:     enums.CouponPriceBaseCatalog,
	}
	lines := []pricing.Line{
		{Price: dec("400.00"), BasePrice: dec("500.00"), Quantity: 2},
	}

	got := calc.ItemsDiscount(coupon, lines)
	require.True(t, got.Equal(dec("100.00")), "discount %s", got)
}

func TestItemsDiscountFixed(t *testing.T) {
	calc := NewCalculator()
	coupon := &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("250.00")}

	got := calc.ItemsDiscount(coupon, nil)
	require.True(t, got.Equal(dec("250.00")))
}

func TestItemsDiscountNilCoupon(t *testing.T) {
	calc := NewCalculator()
	require.True(t, calc.ItemsDiscount(nil, nil).IsZero())
}

func TestDeliveryDiscountPercent(t *testing.T) {
	calc := NewCalculator()
	coupon := &models.Coupon{
		DeliveryDiscountType:  discountTypePtr(enums.CouponDiscountPercent),
		DeliveryDiscountValue: decPtr("10"),
	}

	got := calc.DeliveryDiscount(coupon, dec("1000.00"), dec("200.00"))
	require.True(t, got.Equal(dec("100.00")), "discount %s", got)
}

func TestDeliveryDiscountCappedAtDelivery(t *testing.T) {
	calc := NewCalculator()
	coupon := &models.Coupon{
		DeliveryDiscountType:  discountTypePtr(enums.CouponDiscountFixed),
		DeliveryDiscountValue: decPtr("200.00"),
	}

	got := calc.DeliveryDiscount(coupon, dec("1000.00"), dec("150.00"))
	require.True(t, got.Equal(dec("150.00")), "discount %s", got)
}

func TestDeliveryDiscountWithoutPolicy(t *testing.T) {
	calc := NewCalculator()
	coupon := &models.Coupon{DiscountType: enums.CouponDiscountFixed, DiscountValue: dec("100")}

	require.True(t, calc.DeliveryDiscount(coupon, dec("1000.00"), dec("200.00")).IsZero())
}

func TestValidate(t *testing.T) {
	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	owner := uuid.New()
	other := uuid.New()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5

	cases := []struct {
		name    string
		coupon  *models.Coupon
		args    ValidateArgs
		message string
	}{
		{
			name:   "active coupon passes",
			coupon: &models.Coupon{IsActive: true},
			args:   ValidateArgs{Now: now},
		},
		{
			name:    "nil coupon",
			message: "coupon not found",
		},
		{
			name:    "inactive",
			coupon:  &models.Coupon{IsActive: false},
			args:    ValidateArgs{Now: now},
			message: "coupon is not active",
		},
		{
			name:    "not started",
			coupon:  &models.Coupon{IsActive: true, StartsAt: &future},
			args:    ValidateArgs{Now: now},
			message: "coupon is not active yet",
		},
		{
			name:    "expired",
			coupon:  &models.Coupon{IsActive: true, ExpiresAt: &past},
			args:    ValidateArgs{Now: now},
			message: "coupon has expired",
		},
		{
			name:    "usage limit reached",
			coupon:  &models.Coupon{IsActive: true, UsageLimit: &limit, UsageCount: 5},
			args:    ValidateArgs{Now: now},
			message: "coupon usage limit reached",
		},
		{
			name:    "wrong customer",
			coupon:  &models.Coupon{IsActive: true, UserID: &owner},
			args:    ValidateArgs{Now: now, UserID: &other},
			message: "coupon belongs to another customer",
		},
		{
			name:   "owner passes",
			coupon: &models.Coupon{IsActive: true, UserID: &owner},
			args:   ValidateArgs{Now: now, UserID: &owner},
		},
		{
			name:    "below minimum",
			coupon:  &models.Coupon{IsActive: true, MinItemsAmount: decPtr("1000.00")},
			args:    ValidateArgs{Now: now, ItemsAmount: dec("999.99")},
			message: "order amount is below the coupon minimum",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.coupon, tc.args)
			if tc.message == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidCoupon))
			require.Contains(t, err.Error(), tc.message)
		})
	}
}
