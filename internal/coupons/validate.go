package coupons

import (
	"github.com/milnali/shop-backend/pkg/db/models"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
)

// Validate checks whether the coupon can be redeemed in the given context.
// Every failure is reported as an invalid-coupon error carrying a
// user-facing message.
func Validate(coupon *models.Coupon, args ValidateArgs) error {
	if coupon == nil {
		return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon not found")
	}
	if !coupon.IsActive {
		return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon is not active")
	}
	if coupon.StartsAt != nil && args.Now.Before(*coupon.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon is not active yet")
	}
	if coupon.ExpiresAt != nil && args.Now.After(*coupon.ExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon has expired")
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon usage limit reached")
	}
	if coupon.UserID != nil {
		if args.UserID == nil || *args.UserID != *coupon.UserID {
			return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon belongs to another customer")
		}
	}
	if coupon.MinItemsAmount != nil && args.ItemsAmount.LessThan(*coupon.MinItemsAmount) {
		return pkgerrors.New(pkgerrors.CodeInvalidCoupon, "order amount is below the coupon minimum")
	}
	return nil
}
